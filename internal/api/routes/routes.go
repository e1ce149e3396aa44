// server/internal/api/routes/routes.go
package routes

import (
	"bookmyhall-api-server/config"
	"bookmyhall-api-server/internal/api/handlers"
	"bookmyhall-api-server/internal/api/middleware"
	"bookmyhall-api-server/internal/models"
	"bookmyhall-api-server/internal/notify"
	"bookmyhall-api-server/internal/otp"
	"bookmyhall-api-server/internal/s3"
	"bookmyhall-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter nhận vào các thành phần phụ thuộc và thiết lập các route
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	s3Uploader *s3.Uploader,
	notifier *notify.Publisher,
	otpStore *otp.Store,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	// Khởi tạo các handlers
	userHandler := &handlers.UserHandler{DB: db, Hub: wsHub, Notify: notifier, S3Uploader: s3Uploader}
	hallHandler := &handlers.HallHandler{DB: db, Hub: wsHub, Notify: notifier, S3Uploader: s3Uploader}
	adminHandler := &handlers.AdminHandler{DB: db, Hub: wsHub, Notify: notifier, S3Uploader: s3Uploader}
	directorHandler := &handlers.DirectorHandler{DB: db, Hub: wsHub, Notify: notifier}
	facilityHandler := &handlers.FacilityHandler{DB: db}
	otpHandler := &handlers.OTPHandler{DB: db, Store: otpStore, Notify: notifier}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	// Giới hạn login và OTP theo IP.
	loginLimiter := middleware.NewRateLimiter(1, 5)

	api := router.Group("/api")
	{
		// Route cho WebSocket
		api.GET("/ws", webSocketHandler.ServeWs)

		// === CÁC ROUTE KHÔNG YÊU CẦU XÁC THỰC ===

		// Danh sách facility công khai cho trang đặt chỗ
		api.GET("/facilities", facilityHandler.ListFacilities)
		api.GET("/facilities/:id", facilityHandler.GetFacilityByID)

		// Quên mật khẩu
		authGroup := api.Group("/auth")
		authGroup.Use(loginLimiter.Limit())
		{
			authGroup.POST("/forgot-password", otpHandler.RequestOTP)
			authGroup.POST("/reset-password", otpHandler.ResetPassword)
		}

		// === CÁC ROUTE CỦA USER (faculty/staff) ===
		user := api.Group("/user")
		{
			user.POST("/register", loginLimiter.Limit(), userHandler.Register)
			user.POST("/login", loginLimiter.Limit(), userHandler.Login)

			authed := user.Group("/")
			authed.Use(middleware.Authenticate())
			authed.Use(middleware.Authorize(models.RoleUser, models.RoleAdmin, models.RoleDirector))
			{
				authed.GET("/profile", userHandler.GetProfile)
				authed.PATCH("/profile", userHandler.UpdateProfile)
				authed.POST("/book-appointment", userHandler.BookAppointment)
				authed.GET("/appointments", userHandler.ListMyAppointments)
				authed.POST("/cancel-appointment", userHandler.CancelAppointment)
				authed.POST("/feedback", userHandler.SubmitFeedback)
				authed.GET("/feedback", userHandler.ListMyFeedback)
			}
		}

		// === CÁC ROUTE CỦA COORDINATOR (hall) ===
		hall := api.Group("/hall")
		{
			hall.POST("/login", loginLimiter.Limit(), hallHandler.Login)

			authed := hall.Group("/")
			authed.Use(middleware.Authenticate())
			authed.Use(middleware.Authorize(models.RoleHall))
			{
				authed.GET("/profile", hallHandler.GetProfile)
				authed.PATCH("/profile", hallHandler.UpdateProfile)
				authed.GET("/dashboard", hallHandler.Dashboard)
				authed.GET("/appointments", hallHandler.ListAppointments)
				authed.POST("/request-appointment", hallHandler.AcceptAppointment)
				authed.POST("/reject-appointment", hallHandler.RejectAppointment)
				authed.POST("/cancel-appointment", hallHandler.CancelAppointment)
				authed.POST("/complete-appointment", hallHandler.CompleteAppointment)
				authed.GET("/feedback", hallHandler.ListFeedback)
				authed.PATCH("/review-feedback", hallHandler.ReviewFeedback)
			}
		}

		// === CÁC ROUTE CỦA DIRECTOR ===
		// Director đăng nhập qua /api/user/login, role lấy từ document.
		director := api.Group("/director")
		director.Use(middleware.Authenticate())
		director.Use(middleware.Authorize(models.RoleDirector))
		{
			director.GET("/approvals", directorHandler.ListPendingApprovals)
			director.POST("/decision", directorHandler.Decision)
		}

		// === CÁC ROUTE CỦA ADMIN ===
		admin := api.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize(models.RoleAdmin))
		{
			admin.POST("/add-hall", adminHandler.AddFacility)
			admin.POST("/toggle-availability", adminHandler.ToggleAvailability)
			admin.GET("/facilities", adminHandler.ListFacilities)
			admin.DELETE("/facilities/:id", adminHandler.DeleteFacility)
			admin.PATCH("/coordinator-email", adminHandler.UpdateCoordinatorEmail)
			admin.GET("/appointments", adminHandler.ListAllAppointments)
			admin.POST("/cancel-appointment", adminHandler.CancelAppointment)
			admin.GET("/dashboard", adminHandler.Dashboard)
		}
	}

	return router
}
