// server/internal/api/handlers/director_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"bookmyhall-api-server/internal/booking"
	"bookmyhall-api-server/internal/models"
	"bookmyhall-api-server/internal/notify"
	"bookmyhall-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DirectorHandler là cửa duyệt thứ hai cho guest room và vehicle.
type DirectorHandler struct {
	DB     *mongo.Database
	Hub    *socket.Hub
	Notify *notify.Publisher
}

// ListPendingApprovals lấy các appointment đã qua coordinator và đang chờ
// director quyết định.
func (h *DirectorHandler) ListPendingApprovals(c *gin.Context) {
	filter := bson.M{
		"status":              models.StatusAwaitingDirector,
		"coordinatorDecision": models.DecisionApproved,
		"directorDecision":    models.DecisionPending,
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

type DirectorDecisionRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
	Decision      string `json:"decision" binding:"required"` // approved | rejected
	Comment       string `json:"comment"`
}

// Decision ghi nhận quyết định của director. Update có điều kiện trên
// trạng thái cũ nên một quyết định retry hoặc song song không được ghi
// hai lần; lịch sử được append kèm comment.
func (h *DirectorHandler) Decision(c *gin.Context) {
	email := c.GetString("user_email")
	role := c.GetString("user_role")

	var req DirectorDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var appt models.Appointment
	if err := h.DB.Collection("appointments").FindOne(context.Background(), bson.M{"apptID": req.AppointmentID}).Decode(&appt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Appointment not found"})
		return
	}

	decision, err := booking.DirectorDecide(&appt, role, req.Decision)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
		return
	}

	if !applyDecision(h.DB, &appt, decision, models.StatusEntry{
		Actor:    email,
		Role:     models.RoleDirector,
		Decision: req.Decision,
		Comment:  req.Comment,
		At:       time.Now(),
	}) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Director decision has already been recorded"})
		return
	}

	if appt.Status == models.StatusAccepted {
		h.Notify.Fire(notify.BookingAccepted(&appt))
	} else {
		// Từ chối trả lại slot ngay.
		releaseAppointmentSlots(h.DB, &appt)
		h.Notify.Fire(notify.BookingRejected(&appt, req.Comment))
	}
	pushEvent(h.Hub, appt.UserData.Email, "appointment_updated", &appt)
	pushEvent(h.Hub, appt.FacilityData.Email, "appointment_updated", &appt)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Decision recorded", "appointment": appt})
}
