// server/internal/api/handlers/otp_handler.go
package handlers

import (
	"context"
	"net/http"

	"bookmyhall-api-server/internal/auth"
	"bookmyhall-api-server/internal/notify"
	"bookmyhall-api-server/internal/otp"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// OTPHandler xử lý quên mật khẩu cho cả user và coordinator (hall).
type OTPHandler struct {
	DB     *mongo.Database
	Store  *otp.Store
	Notify *notify.Publisher
}

type RequestOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Type  string `json:"type" binding:"required"` // user | hall
}

func (h *OTPHandler) accountExists(accountType, email string) (bool, error) {
	collection := "users"
	if accountType == otp.TypeHall {
		collection = "facilities"
	}
	count, err := h.DB.Collection(collection).CountDocuments(context.Background(), bson.M{"email": email})
	return count > 0, err
}

// RequestOTP sinh mã 6 chữ số, lưu Redis với TTL 5 phút (ghi đè mã cũ)
// và gửi qua email. Mỗi request mới thay thế mã trước đó.
func (h *OTPHandler) RequestOTP(c *gin.Context) {
	var req RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if req.Type != otp.TypeUser && req.Type != otp.TypeHall {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Type must be user or hall"})
		return
	}

	exists, err := h.accountExists(req.Type, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error checking for account"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "No account found for this email"})
		return
	}

	code, err := otp.GenerateCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate code"})
		return
	}

	if err := h.Store.Put(c.Request.Context(), req.Type, req.Email, code); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Password reset is temporarily unavailable"})
		return
	}

	h.Notify.Fire(notify.OTPCode(req.Email, code))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "A reset code has been sent to your email"})
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Type        string `json:"type" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ResetPassword kiểm tra mã (dùng một lần) và đặt mật khẩu mới. Với login
// coordinator, mật khẩu mới lan sang mọi facility đang dùng chung email.
func (h *OTPHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if req.Type != otp.TypeUser && req.Type != otp.TypeHall {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Type must be user or hall"})
		return
	}

	switch err := h.Store.Verify(c.Request.Context(), req.Type, req.Email, req.OTP); err {
	case nil:
	case otp.ErrNotFound:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Code expired or not requested"})
		return
	case otp.ErrMismatch:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Incorrect code"})
		return
	case otp.ErrUnavailable:
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Password reset is temporarily unavailable"})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to verify code"})
		return
	}

	hashedPassword, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to hash password"})
		return
	}

	if req.Type == otp.TypeHall {
		// Cả đội dùng chung một password: cập nhật mọi document cùng email.
		_, err = h.DB.Collection("facilities").UpdateMany(
			context.Background(),
			bson.M{"email": req.Email},
			bson.M{"$set": bson.M{"password": hashedPassword}},
		)
	} else {
		_, err = h.DB.Collection("users").UpdateOne(
			context.Background(),
			bson.M{"email": req.Email},
			bson.M{"$set": bson.M{"password": hashedPassword}},
		)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password has been reset"})
}
