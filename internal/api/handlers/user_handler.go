// server/internal/api/handlers/user_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bookmyhall-api-server/internal/auth"
	"bookmyhall-api-server/internal/booking"
	"bookmyhall-api-server/internal/models"
	"bookmyhall-api-server/internal/notify"
	"bookmyhall-api-server/internal/s3"
	"bookmyhall-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserHandler struct {
	DB         *mongo.Database
	Hub        *socket.Hub
	Notify     *notify.Publisher
	S3Uploader *s3.Uploader
}

type RegisterUserRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register tạo tài khoản user mới.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userCollection := h.DB.Collection("users")

	// Kiểm tra xem email đã tồn tại chưa
	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": req.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error checking for user"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "This email is already registered"})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to hash password"})
		return
	}

	newUser := models.User{
		UserID:     fmt.Sprintf("USER-%s", uuid.New().String()[:8]),
		Name:       req.Name,
		Email:      req.Email,
		Password:   hashedPassword,
		Phone:      req.Phone,
		Department: req.Department,
		Role:       models.RoleUser,
		CreatedAt:  time.Now(),
	}

	if _, err := userCollection.InsertOne(context.Background(), newUser); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create user"})
		return
	}

	token, err := auth.GenerateJWT(newUser.Email, newUser.Role, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token})
}

// Login xác thực user/admin/director qua collection "users".
// Role lấy từ document, không phải từ request.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var user models.User
	err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateJWT(user.Email, user.Role, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "role": user.Role})
}

// GetProfile trả về hồ sơ của user đang đăng nhập.
func (h *UserHandler) GetProfile(c *gin.Context) {
	email := c.GetString("user_email")

	var user models.User
	err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": email}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateProfile cập nhật hồ sơ; ảnh đại diện (nếu có) được upload lên S3.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	email := c.GetString("user_email")

	update := bson.M{}
	if name := c.PostForm("name"); name != "" {
		update["name"] = name
	}
	if phone := c.PostForm("phone"); phone != "" {
		update["phone"] = phone
	}
	if department := c.PostForm("department"); department != "" {
		update["department"] = department
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read uploaded image"})
			return
		}
		defer file.Close()

		objectKey := fmt.Sprintf("users/%s-%s", uuid.New().String()[:8], fileHeader.Filename)
		imageURL, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to upload image"})
			return
		}
		update["image"] = imageURL
	}

	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Nothing to update"})
		return
	}

	_, err := h.DB.Collection("users").UpdateOne(context.Background(), bson.M{"email": email}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated"})
}

type BookAppointmentRequest struct {
	FacilityID string `json:"hallId" binding:"required"`
	SlotDate   string `json:"slotDate" binding:"required"`
	SlotTime   string `json:"slotTime" binding:"required"`
	Reason     string `json:"reason"`
}

// BookAppointment tạo một yêu cầu đặt chỗ mới.
// Việc giữ slot là MỘT update có điều kiện: filter khẳng định các cửa sổ
// chưa nằm trong slotsBooked[date] và $addToSet chúng trong cùng thao tác,
// nên hai request cùng slot không bao giờ cùng thắng.
func (h *UserHandler) BookAppointment(c *gin.Context) {
	email := c.GetString("user_email")

	var req BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if !booking.ValidSlotDate(req.SlotDate) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Slot date must be in YYYY-MM-DD format"})
		return
	}

	var user models.User
	if err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": email}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	facilityCollection := h.DB.Collection("facilities")
	var facility models.Facility
	err := facilityCollection.FindOne(context.Background(), bson.M{"facilityID": req.FacilityID}).Decode(&facility)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Facility not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve facility"})
		}
		return
	}

	if !facility.Available {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Facility is not available"})
		return
	}

	windows, err := booking.ExpandSlot(facility.Kind, req.SlotTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// Giữ slot bằng update nguyên tử có điều kiện.
	slotField := "slotsBooked." + req.SlotDate
	grantFilter := bson.M{
		"facilityID": req.FacilityID,
		"available":  true,
		slotField:    bson.M{"$nin": windows},
	}
	grantUpdate := bson.M{"$addToSet": bson.M{slotField: bson.M{"$each": windows}}}

	grantResult, err := facilityCollection.UpdateOne(context.Background(), grantFilter, grantUpdate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error booking the slot"})
		return
	}
	if grantResult.ModifiedCount == 0 {
		// Slot đã bị chiếm (hoặc vừa bị chiếm bởi request song song).
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Slot not available"})
		return
	}

	newAppointment := models.Appointment{
		ApptID:              fmt.Sprintf("APPT-%s", uuid.New().String()[:8]),
		UserID:              user.UserID,
		FacilityID:          facility.FacilityID,
		UserData:            user.Snapshot(),
		FacilityData:        facility.Snapshot(),
		SlotDate:            req.SlotDate,
		SlotTime:            req.SlotTime,
		Reason:              req.Reason,
		Status:              models.StatusPending,
		CoordinatorDecision: models.DecisionPending,
		DirectorDecision:    models.DecisionPending,
		CreatedAt:           time.Now().UnixMilli(),
	}

	if _, err := h.DB.Collection("appointments").InsertOne(context.Background(), newAppointment); err != nil {
		// Trả lại slot vừa giữ trước khi báo lỗi.
		releaseSlots(h.DB, facility.FacilityID, req.SlotDate, windows)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create appointment"})
		return
	}

	h.Notify.Fire(notify.BookingCreated(&newAppointment))
	pushEvent(h.Hub, facility.Email, "new_appointment", &newAppointment)

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Appointment requested", "appointment": newAppointment})
}

// ListMyAppointments lấy danh sách appointment của user đang đăng nhập.
func (h *UserHandler) ListMyAppointments(c *gin.Context) {
	email := c.GetString("user_email")

	var user models.User
	if err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": email}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("appointments").Find(context.Background(), bson.M{"userID": user.UserID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query appointments"})
		return
	}
	defer cursor.Close(context.Background())

	var appointments []models.Appointment
	if err = cursor.All(context.Background(), &appointments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode appointments"})
		return
	}

	if appointments == nil {
		appointments = []models.Appointment{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "appointments": appointments})
}

type CancelAppointmentRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
}

// CancelAppointment hủy appointment của chính user.
func (h *UserHandler) CancelAppointment(c *gin.Context) {
	email := c.GetString("user_email")

	var req CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": email}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	apptCollection := h.DB.Collection("appointments")
	var appt models.Appointment
	if err := apptCollection.FindOne(context.Background(), bson.M{"apptID": req.AppointmentID}).Decode(&appt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Appointment not found"})
		return
	}

	// Chỉ chủ sở hữu mới được hủy.
	if appt.UserID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "This appointment does not belong to you"})
		return
	}

	decision, err := booking.Cancel(&appt)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
		return
	}

	if !applyDecision(h.DB, &appt, decision, models.StatusEntry{
		Actor:    user.Email,
		Role:     models.RoleUser,
		Decision: "cancelled",
		At:       time.Now(),
	}) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Appointment was updated by someone else. Please retry."})
		return
	}

	releaseAppointmentSlots(h.DB, &appt)

	h.Notify.Fire(notify.BookingCancelled(&appt, user.Name))
	pushEvent(h.Hub, appt.FacilityData.Email, "appointment_cancelled", &appt)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment cancelled"})
}

type SubmitFeedbackRequest struct {
	AppointmentID    string `json:"appointmentId" binding:"required"`
	Rating           int    `json:"rating" binding:"required,min=1,max=5"`
	Cleanliness      string `json:"cleanliness"`
	DescriptionMatch string `json:"descriptionMatch"`
	Electricity      string `json:"electricity"`
	Comments         string `json:"comments"`
}

// SubmitFeedback nhận đánh giá cho một appointment đã hoàn tất.
// Mỗi cặp (appointment, user) chỉ được một feedback; unique index trên
// collection chặn cả trường hợp hai request song song.
func (h *UserHandler) SubmitFeedback(c *gin.Context) {
	email := c.GetString("user_email")

	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var user models.User
	if err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": email}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	var appt models.Appointment
	if err := h.DB.Collection("appointments").FindOne(context.Background(), bson.M{"apptID": req.AppointmentID}).Decode(&appt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Appointment not found"})
		return
	}

	if appt.UserID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "This appointment does not belong to you"})
		return
	}

	if !appt.IsCompleted() {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Feedback can only be submitted for completed appointments"})
		return
	}

	feedbackCollection := h.DB.Collection("feedback")
	count, err := feedbackCollection.CountDocuments(context.Background(), bson.M{"apptID": appt.ApptID, "userID": user.UserID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error checking for feedback"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Feedback already submitted for this appointment"})
		return
	}

	newFeedback := models.Feedback{
		FeedbackID:       fmt.Sprintf("FDBK-%s", uuid.New().String()[:8]),
		ApptID:           appt.ApptID,
		FacilityID:       appt.FacilityID,
		UserID:           user.UserID,
		Rating:           req.Rating,
		Cleanliness:      req.Cleanliness,
		DescriptionMatch: req.DescriptionMatch,
		Electricity:      req.Electricity,
		Comments:         req.Comments,
		CreatedAt:        time.Now(),
	}

	if _, err := feedbackCollection.InsertOne(context.Background(), newFeedback); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Feedback already submitted for this appointment"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save feedback"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Feedback submitted", "feedback": newFeedback})
}

// ListMyFeedback lấy các feedback của user đang đăng nhập.
func (h *UserHandler) ListMyFeedback(c *gin.Context) {
	email := c.GetString("user_email")

	var user models.User
	if err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": email}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	cursor, err := h.DB.Collection("feedback").Find(context.Background(), bson.M{"userID": user.UserID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query feedback"})
		return
	}
	defer cursor.Close(context.Background())

	var feedback []models.Feedback
	if err = cursor.All(context.Background(), &feedback); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode feedback"})
		return
	}

	if feedback == nil {
		feedback = []models.Feedback{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "feedback": feedback})
}

// pushEvent gửi một sự kiện JSON qua websocket hub, bỏ qua lỗi.
func pushEvent(hub *socket.Hub, email, event string, appt *models.Appointment) {
	if hub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"event":       event,
		"appointment": appt,
	})
	_ = hub.Send(email, payload)
}
