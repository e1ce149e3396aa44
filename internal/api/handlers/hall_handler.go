// server/internal/api/handlers/hall_handler.go
package handlers

import (
	"context"
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

// HallHandler phục vụ coordinator: một login (email) có thể quản lý một
// hall hoặc cả một đội guest room/vehicle dùng chung email đó.
type HallHandler struct {
	DB         *mongo.Database
	Hub        *socket.Hub
	Notify     *notify.Publisher
	S3Uploader *s3.Uploader
}

// Login xác thực coordinator qua collection "facilities".
func (h *HallHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// Đội guest room/vehicle dùng chung một password, lấy document nào cũng được.
	var facility models.Facility
	err := h.DB.Collection("facilities").FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&facility)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, facility.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateJWT(facility.Email, models.RoleHall, facility.FacilityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// facilitiesForCoordinator trả về mọi facility thuộc email đăng nhập.
func facilitiesForCoordinator(db *mongo.Database, email string) ([]models.Facility, error) {
	cursor, err := db.Collection("facilities").Find(context.Background(), bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(context.Background())

	var facilities []models.Facility
	if err = cursor.All(context.Background(), &facilities); err != nil {
		return nil, err
	}
	return facilities, nil
}

// coordinatorOwns kiểm tra appointment có thuộc coordinator đang đăng nhập
// không, dựa trên email hiện tại của facility (snapshot dùng làm fallback
// khi facility đã bị xóa).
func coordinatorOwns(db *mongo.Database, email string, appt *models.Appointment) bool {
	var facility models.Facility
	err := db.Collection("facilities").FindOne(context.Background(), bson.M{"facilityID": appt.FacilityID}).Decode(&facility)
	if err == nil {
		return facility.Email == email
	}
	return appt.FacilityData.Email == email
}

// GetProfile trả về các facility thuộc coordinator đang đăng nhập.
func (h *HallHandler) GetProfile(c *gin.Context) {
	email := c.GetString("user_email")

	facilities, err := facilitiesForCoordinator(h.DB, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query facilities"})
		return
	}
	if facilities == nil {
		facilities = []models.Facility{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "facilities": facilities})
}

// UpdateProfile cho coordinator sửa mô tả/địa chỉ/ảnh của một facility mình sở hữu.
func (h *HallHandler) UpdateProfile(c *gin.Context) {
	email := c.GetString("user_email")
	facilityID := c.PostForm("facilityID")
	if facilityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "facilityID is required"})
		return
	}

	update := bson.M{}
	if about := c.PostForm("about"); about != "" {
		update["about"] = about
	}
	if address := c.PostForm("address"); address != "" {
		update["address"] = address
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read uploaded image"})
			return
		}
		defer file.Close()

		objectKey := fmt.Sprintf("facilities/%s-%s", uuid.New().String()[:8], fileHeader.Filename)
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

	// Filter theo cả email để không sửa được facility của người khác.
	result, err := h.DB.Collection("facilities").UpdateOne(
		context.Background(),
		bson.M{"facilityID": facilityID, "email": email},
		bson.M{"$set": update},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update facility"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "This facility does not belong to you"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Facility updated"})
}

// Dashboard trả về số liệu tổng quan cho coordinator.
func (h *HallHandler) Dashboard(c *gin.Context) {
	email := c.GetString("user_email")

	facilities, err := facilitiesForCoordinator(h.DB, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query facilities"})
		return
	}

	facilityIDs := make([]string, 0, len(facilities))
	for _, f := range facilities {
		facilityIDs = append(facilityIDs, f.FacilityID)
	}

	apptCollection := h.DB.Collection("appointments")
	baseFilter := bson.M{"facilityID": bson.M{"$in": facilityIDs}}

	total, _ := apptCollection.CountDocuments(context.Background(), baseFilter)
	pending, _ := apptCollection.CountDocuments(context.Background(), bson.M{"facilityID": bson.M{"$in": facilityIDs}, "status": models.StatusPending})
	completed, _ := apptCollection.CountDocuments(context.Background(), bson.M{"facilityID": bson.M{"$in": facilityIDs}, "status": models.StatusCompleted})

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(5)
	cursor, err := apptCollection.Find(context.Background(), baseFilter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query appointments"})
		return
	}
	defer cursor.Close(context.Background())

	var latest []models.Appointment
	if err = cursor.All(context.Background(), &latest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode appointments"})
		return
	}
	if latest == nil {
		latest = []models.Appointment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"dashboard": gin.H{
			"facilities":   len(facilities),
			"appointments": total,
			"pending":      pending,
			"completed":    completed,
			"latest":       latest,
		},
	})
}

// ListAppointments lấy mọi appointment trên các facility của coordinator.
func (h *HallHandler) ListAppointments(c *gin.Context) {
	email := c.GetString("user_email")

	facilities, err := facilitiesForCoordinator(h.DB, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query facilities"})
		return
	}

	facilityIDs := make([]string, 0, len(facilities))
	for _, f := range facilities {
		facilityIDs = append(facilityIDs, f.FacilityID)
	}

	filter := bson.M{"facilityID": bson.M{"$in": facilityIDs}}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("appointments").Find(context.Background(), filter, findOptions)
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

// AcceptAppointment: coordinator chấp nhận một yêu cầu đang pending.
// Hall được chấp nhận thẳng; guest room/vehicle chuyển sang chờ director.
func (h *HallHandler) AcceptAppointment(c *gin.Context) {
	email := c.GetString("user_email")

	var req CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var appt models.Appointment
	if err := h.DB.Collection("appointments").FindOne(context.Background(), bson.M{"apptID": req.AppointmentID}).Decode(&appt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Appointment not found"})
		return
	}

	if !coordinatorOwns(h.DB, email, &appt) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "This appointment does not belong to your facility"})
		return
	}

	decision, err := booking.CoordinatorAccept(&appt)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
		return
	}

	if !applyDecision(h.DB, &appt, decision, models.StatusEntry{
		Actor:    email,
		Role:     models.RoleHall,
		Decision: models.DecisionApproved,
		At:       time.Now(),
	}) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Appointment was updated by someone else. Please retry."})
		return
	}

	if appt.Status == models.StatusAwaitingDirector {
		h.Notify.Fire(notify.BookingAwaitingDirector(&appt))
		h.notifyDirectors(&appt)
	} else {
		h.Notify.Fire(notify.BookingAccepted(&appt))
	}
	pushEvent(h.Hub, appt.UserData.Email, "appointment_updated", &appt)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment accepted", "appointment": appt})
}

type RejectAppointmentRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
	Comment       string `json:"comment"`
}

// RejectAppointment: coordinator từ chối một yêu cầu đang pending (terminal).
func (h *HallHandler) RejectAppointment(c *gin.Context) {
	email := c.GetString("user_email")

	var req RejectAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var appt models.Appointment
	if err := h.DB.Collection("appointments").FindOne(context.Background(), bson.M{"apptID": req.AppointmentID}).Decode(&appt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Appointment not found"})
		return
	}

	if !coordinatorOwns(h.DB, email, &appt) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "This appointment does not belong to your facility"})
		return
	}

	decision, err := booking.CoordinatorReject(&appt)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
		return
	}

	if !applyDecision(h.DB, &appt, decision, models.StatusEntry{
		Actor:    email,
		Role:     models.RoleHall,
		Decision: models.DecisionRejected,
		Comment:  req.Comment,
		At:       time.Now(),
	}) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Appointment was updated by someone else. Please retry."})
		return
	}

	releaseAppointmentSlots(h.DB, &appt)

	h.Notify.Fire(notify.BookingRejected(&appt, req.Comment))
	pushEvent(h.Hub, appt.UserData.Email, "appointment_updated", &appt)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment rejected"})
}

// CancelAppointment: coordinator hủy một appointment trên facility của mình.
func (h *HallHandler) CancelAppointment(c *gin.Context) {
	email := c.GetString("user_email")

	var req CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var appt models.Appointment
	if err := h.DB.Collection("appointments").FindOne(context.Background(), bson.M{"apptID": req.AppointmentID}).Decode(&appt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Appointment not found"})
		return
	}

	if !coordinatorOwns(h.DB, email, &appt) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "This appointment does not belong to your facility"})
		return
	}

	decision, err := booking.Cancel(&appt)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
		return
	}

	if !applyDecision(h.DB, &appt, decision, models.StatusEntry{
		Actor:    email,
		Role:     models.RoleHall,
		Decision: "cancelled",
		At:       time.Now(),
	}) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Appointment was updated by someone else. Please retry."})
		return
	}

	releaseAppointmentSlots(h.DB, &appt)

	h.Notify.Fire(notify.BookingCancelled(&appt, appt.FacilityData.Name))
	pushEvent(h.Hub, appt.UserData.Email, "appointment_cancelled", &appt)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment cancelled"})
}

// CompleteAppointment đánh dấu một appointment đã accepted là hoàn tất,
// mở khóa việc gửi feedback. Gọi lặp lại bị từ chối.
func (h *HallHandler) CompleteAppointment(c *gin.Context) {
	email := c.GetString("user_email")

	var req CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var appt models.Appointment
	if err := h.DB.Collection("appointments").FindOne(context.Background(), bson.M{"apptID": req.AppointmentID}).Decode(&appt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Appointment not found"})
		return
	}

	if !coordinatorOwns(h.DB, email, &appt) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "This appointment does not belong to your facility"})
		return
	}

	decision, err := booking.Complete(&appt)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
		return
	}

	if !applyDecision(h.DB, &appt, decision, models.StatusEntry{
		Actor:    email,
		Role:     models.RoleHall,
		Decision: "completed",
		At:       time.Now(),
	}) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Appointment was updated by someone else. Please retry."})
		return
	}

	h.Notify.Fire(notify.BookingCompleted(&appt))
	pushEvent(h.Hub, appt.UserData.Email, "appointment_updated", &appt)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment completed"})
}

// ListFeedback lấy feedback trên các facility của coordinator.
func (h *HallHandler) ListFeedback(c *gin.Context) {
	email := c.GetString("user_email")

	facilities, err := facilitiesForCoordinator(h.DB, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query facilities"})
		return
	}

	facilityIDs := make([]string, 0, len(facilities))
	for _, f := range facilities {
		facilityIDs = append(facilityIDs, f.FacilityID)
	}

	cursor, err := h.DB.Collection("feedback").Find(context.Background(), bson.M{"facilityID": bson.M{"$in": facilityIDs}})
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

type ReviewFeedbackRequest struct {
	FeedbackID   string `json:"feedbackId" binding:"required"`
	AdminRating  int    `json:"adminRating" binding:"required,min=1,max=5"`
	AdminMessage string `json:"adminMessage" binding:"required"`
}

// ReviewFeedback ghi phản hồi của coordinator cho một feedback trên
// facility của mình.
func (h *HallHandler) ReviewFeedback(c *gin.Context) {
	email := c.GetString("user_email")

	var req ReviewFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	feedbackCollection := h.DB.Collection("feedback")
	var feedback models.Feedback
	if err := feedbackCollection.FindOne(context.Background(), bson.M{"feedbackID": req.FeedbackID}).Decode(&feedback); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Feedback not found"})
		return
	}

	// Ownership: facility của feedback phải thuộc email đăng nhập.
	count, err := h.DB.Collection("facilities").CountDocuments(context.Background(), bson.M{"facilityID": feedback.FacilityID, "email": email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error checking facility ownership"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "This feedback does not belong to your facility"})
		return
	}

	reply := models.CoordinatorReply{
		Rating:     req.AdminRating,
		Message:    req.AdminMessage,
		ReviewedAt: time.Now(),
	}

	_, err = feedbackCollection.UpdateOne(
		context.Background(),
		bson.M{"feedbackID": req.FeedbackID},
		bson.M{"$set": bson.M{"reply": reply}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review saved"})
}

// notifyDirectors đẩy sự kiện websocket cho mọi tài khoản director.
func (h *HallHandler) notifyDirectors(appt *models.Appointment) {
	cursor, err := h.DB.Collection("users").Find(context.Background(), bson.M{"role": models.RoleDirector})
	if err != nil {
		return
	}
	defer cursor.Close(context.Background())

	var directors []models.User
	if err = cursor.All(context.Background(), &directors); err != nil {
		return
	}
	for _, d := range directors {
		pushEvent(h.Hub, d.Email, "awaiting_director", appt)
	}
}
