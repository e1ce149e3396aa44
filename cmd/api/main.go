// server/cmd/api/main.go
package main

import (
	"log"

	"bookmyhall-api-server/config"
	"bookmyhall-api-server/internal/api/routes"
	"bookmyhall-api-server/internal/auth"
	"bookmyhall-api-server/internal/database"
	"bookmyhall-api-server/internal/notify"
	"bookmyhall-api-server/internal/otp"
	"bookmyhall-api-server/internal/s3"
	"bookmyhall-api-server/internal/socket"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Nạp .env cho môi trường dev (bỏ qua nếu không có file)
	_ = godotenv.Load()

	// 2. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	auth.Configure(cfg.JWT.Secret, cfg.JWT.Expiration)

	// 3. Kết nối MongoDB, tạo index và seed tài khoản admin/director
	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := database.EnsureIndexes(db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	if err := database.SeedAccounts(db, cfg.Seed); err != nil {
		log.Fatalf("Failed to seed accounts: %v", err)
	}

	// 4. Khởi tạo S3 uploader cho ảnh facility
	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to create S3 uploader: %v", err)
	}

	// 5. Notification queue: publisher cho handlers, worker gửi SMTP chạy nền
	notifier := notify.NewPublisher(cfg.AMQP.URL)
	go notify.StartWorker(cfg.AMQP.URL, cfg.SMTP)

	// 6. OTP store (Redis) cho quên mật khẩu
	otpStore := otp.NewStore(cfg.Redis)

	// 7. WebSocket hub cho sự kiện đặt chỗ realtime
	wsHub := socket.NewHub()

	// 8. Truyền tất cả các thành phần cần thiết vào router
	router := routes.SetupRouter(cfg, db, s3Uploader, notifier, otpStore, wsHub)

	// 9. Start server
	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
