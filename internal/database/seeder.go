// server/internal/database/seeder.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"bookmyhall-api-server/config"
	"bookmyhall-api-server/internal/auth"
	"bookmyhall-api-server/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedAccounts đảm bảo tài khoản admin và director tồn tại trong collection
// users. Password lấy từ config; bỏ qua nếu đã có.
func SeedAccounts(db *mongo.Database, cfg config.SeedConfig) error {
	if err := seedRole(db, cfg.AdminEmail, cfg.AdminPassword, "Administrator", models.RoleAdmin); err != nil {
		return err
	}
	return seedRole(db, cfg.DirectorEmail, cfg.DirectorPassword, "Director", models.RoleDirector)
}

func seedRole(db *mongo.Database, email, password, name, role string) error {
	if email == "" || password == "" {
		log.Printf("Seed account for role %q not configured. Seeding skipped.", role)
		return nil
	}

	userCollection := db.Collection("users")

	// Kiểm tra xem tài khoản đã tồn tại chưa
	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": email})
	if err != nil {
		return err
	}

	if count > 0 {
		log.Printf("Account %s already exists. Seeding skipped.", email)
		return nil
	}

	log.Printf("Account %s not found. Seeding...", email)
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	account := models.User{
		UserID:    fmt.Sprintf("%s-%s", role, uuid.New().String()[:8]),
		Email:     email,
		Name:      name,
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: time.Now(),
	}

	_, err = userCollection.InsertOne(context.Background(), account)
	if err != nil {
		return err
	}

	log.Printf("Account %s seeded successfully.", email)
	return nil
}
