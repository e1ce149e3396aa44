package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các vai trò đăng nhập. Coordinator đăng nhập qua collection "facilities"
// nên không có role riêng ở đây.
const (
	RoleUser     = "user"
	RoleHall     = "hall" // coordinator của một hoặc nhiều facility
	RoleDirector = "director"
	RoleAdmin    = "admin"
)

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"userID" json:"userID"` // ví dụ: "USER-a1b2c3d4"
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"`
	Phone      string             `bson:"phone,omitempty" json:"phone"`
	Department string             `bson:"department,omitempty" json:"department"`
	Image      string             `bson:"image,omitempty" json:"image"`
	Role       string             `bson:"role" json:"role"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// UserSnapshot là bản sao dữ liệu user được nhúng vào appointment.
type UserSnapshot struct {
	UserID     string `bson:"userID" json:"userID"`
	Name       string `bson:"name" json:"name"`
	Email      string `bson:"email" json:"email"`
	Phone      string `bson:"phone,omitempty" json:"phone"`
	Department string `bson:"department,omitempty" json:"department"`
}

// Snapshot tạo UserSnapshot từ user hiện tại.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		UserID:     u.UserID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Department: u.Department,
	}
}
