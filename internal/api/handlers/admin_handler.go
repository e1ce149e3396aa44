// server/internal/api/handlers/admin_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AdminHandler struct {
	DB         *mongo.Database
	Hub        *socket.Hub
	Notify     *notify.Publisher
	S3Uploader *s3.Uploader
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AddFacility tạo một facility mới từ form multipart (có ảnh).
// Hall cần email duy nhất + password mới. Guest room/vehicle có thể gia
// nhập đội của một coordinator sẵn có: dùng lại password đã lưu.
func (h *AdminHandler) AddFacility(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")
	speciality := c.PostForm("speciality")
	experience := c.PostForm("experience")
	about := c.PostForm("about")
	address := c.PostForm("address")

	kind := c.PostForm("kind")
	if kind == "" {
		// Client cũ gửi hai cờ boolean thay vì kind.
		switch {
		case c.PostForm("isGuestRoom") == "true":
			kind = models.KindGuestRoom
		case c.PostForm("isVehicle") == "true":
			kind = models.KindVehicle
		default:
			kind = models.KindHall
		}
	}
	if kind != models.KindHall && kind != models.KindGuestRoom && kind != models.KindVehicle {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "kind must be hall, guest_room or vehicle"})
		return
	}

	if name == "" || email == "" || speciality == "" || experience == "" || about == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
		return
	}
	// Address không bắt buộc với vehicle.
	if address == "" && kind != models.KindVehicle {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Address is required"})
		return
	}
	if !emailPattern.MatchString(email) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid email format"})
		return
	}

	facilityCollection := h.DB.Collection("facilities")

	// Email không được trùng với một hall đã có.
	hallCount, err := facilityCollection.CountDocuments(context.Background(), bson.M{"email": email, "kind": models.KindHall})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error checking for facility"})
		return
	}
	if hallCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "This email is already registered for a hall"})
		return
	}

	var hashedPassword string
	if kind == models.KindHall {
		// Hall luôn là login mới.
		count, err := facilityCollection.CountDocuments(context.Background(), bson.M{"email": email})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error checking for facility"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "This email is already registered"})
			return
		}
		if password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Password is required"})
			return
		}
		hashedPassword, err = auth.HashPassword(password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to hash password"})
			return
		}
	} else {
		// Guest room/vehicle: nếu coordinator đã tồn tại, dùng lại password
		// đã lưu để cả đội vẫn chung một login.
		var existing models.Facility
		err := facilityCollection.FindOne(context.Background(), bson.M{
			"email": email,
			"kind":  bson.M{"$in": []string{models.KindGuestRoom, models.KindVehicle}},
		}).Decode(&existing)
		switch {
		case err == nil:
			hashedPassword = existing.Password
		case err == mongo.ErrNoDocuments:
			if password == "" {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Password is required for a new coordinator"})
				return
			}
			hashedPassword, err = auth.HashPassword(password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to hash password"})
				return
			}
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error checking for coordinator"})
			return
		}
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Facility image is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read uploaded image"})
		return
	}
	defer file.Close()

	objectKey := fmt.Sprintf("facilities/%s-%s", uuid.New().String()[:8], fileHeader.Filename)
	imageURL, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		// Lỗi upload ảnh làm hỏng cả thao tác, không tạo facility thiếu ảnh.
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to upload image"})
		return
	}

	prefix := map[string]string{
		models.KindHall:      "HALL",
		models.KindGuestRoom: "ROOM",
		models.KindVehicle:   "VHCL",
	}[kind]

	newFacility := models.Facility{
		FacilityID:  fmt.Sprintf("%s-%s", prefix, uuid.New().String()[:8]),
		Kind:        kind,
		Name:        name,
		Email:       email,
		Password:    hashedPassword,
		Speciality:  speciality,
		Experience:  experience,
		About:       about,
		Address:     address,
		Image:       imageURL,
		Available:   true,
		SlotsBooked: map[string][]string{},
		CreatedAt:   time.Now(),
	}

	result, err := facilityCollection.InsertOne(context.Background(), newFacility)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create facility"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newFacility.ID = oid
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Facility added", "facility": newFacility})
}

type ToggleAvailabilityRequest struct {
	FacilityID string `json:"facilityID" binding:"required"`
}

// ToggleAvailability đảo cờ available của một facility.
// Không ảnh hưởng đến các appointment đang tồn tại.
func (h *AdminHandler) ToggleAvailability(c *gin.Context) {
	var req ToggleAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
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

	_, err = facilityCollection.UpdateOne(
		context.Background(),
		bson.M{"facilityID": req.FacilityID},
		bson.M{"$set": bson.M{"available": !facility.Available}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update facility"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Availability changed", "available": !facility.Available})
}

// ListFacilities trả về toàn bộ facility: hall riêng, guest room/vehicle
// gom theo email coordinator, kèm booking đang hoạt động và điểm đánh giá.
func (h *AdminHandler) ListFacilities(c *gin.Context) {
	cursor, err := h.DB.Collection("facilities").Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query facilities"})
		return
	}
	defer cursor.Close(context.Background())

	var facilities []models.Facility
	if err = cursor.All(context.Background(), &facilities); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode facilities"})
		return
	}

	halls := []models.Facility{}
	fleets := map[string][]models.Facility{} // email coordinator -> đội guest room/vehicle
	for _, f := range facilities {
		if f.Kind == models.KindHall {
			halls = append(halls, f)
		} else {
			fleets[f.Email] = append(fleets[f.Email], f)
		}
	}

	// Booking đang hoạt động, gom theo facilityID để hiển thị.
	activeFilter := bson.M{"status": bson.M{"$in": []string{
		models.StatusPending, models.StatusAwaitingDirector, models.StatusAccepted,
	}}}
	apptCursor, err := h.DB.Collection("appointments").Find(context.Background(), activeFilter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query appointments"})
		return
	}
	defer apptCursor.Close(context.Background())

	var active []models.Appointment
	if err = apptCursor.All(context.Background(), &active); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode appointments"})
		return
	}
	activeByFacility := map[string][]models.Appointment{}
	for _, a := range active {
		activeByFacility[a.FacilityID] = append(activeByFacility[a.FacilityID], a)
	}

	ratings, err := facilityRatings(h.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to aggregate ratings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"halls":          halls,
		"fleets":         fleets,
		"activeBookings": activeByFacility,
		"ratings":        ratings,
	})
}

// facilityRatings tính điểm trung bình và số lượng feedback theo facility.
func facilityRatings(db *mongo.Database) (map[string]models.FacilityRating, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     "$facilityID",
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}
	cursor, err := db.Collection("feedback").Aggregate(context.Background(), pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(context.Background())

	var rows []models.FacilityRating
	if err = cursor.All(context.Background(), &rows); err != nil {
		return nil, err
	}

	ratings := make(map[string]models.FacilityRating, len(rows))
	for _, r := range rows {
		ratings[r.FacilityID] = r
	}
	return ratings, nil
}

// DeleteFacility xóa facility và cascade: báo hủy cho mọi appointment đang
// hoạt động, đánh dấu cancelled, rồi xóa toàn bộ appointment của facility
// và chính facility. Không thể hoàn tác.
func (h *AdminHandler) DeleteFacility(c *gin.Context) {
	facilityID := c.Param("id")

	facilityCollection := h.DB.Collection("facilities")
	var facility models.Facility
	err := facilityCollection.FindOne(context.Background(), bson.M{"facilityID": facilityID}).Decode(&facility)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Facility not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve facility"})
		}
		return
	}

	apptCollection := h.DB.Collection("appointments")
	activeFilter := bson.M{
		"facilityID": facilityID,
		"status": bson.M{"$in": []string{
			models.StatusPending, models.StatusAwaitingDirector, models.StatusAccepted,
		}},
	}

	cursor, err := apptCollection.Find(context.Background(), activeFilter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to query appointments"})
		return
	}
	var active []models.Appointment
	if err = cursor.All(context.Background(), &active); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode appointments"})
		return
	}

	// Báo hủy cho từng người đặt trước khi xóa dữ liệu.
	for i := range active {
		h.Notify.Fire(notify.FacilityDeleted(&active[i]))
		pushEvent(h.Hub, active[i].UserData.Email, "appointment_cancelled", &active[i])
	}

	if _, err := apptCollection.UpdateMany(context.Background(), activeFilter, bson.M{"$set": bson.M{"status": models.StatusCancelled}}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to cancel appointments"})
		return
	}

	if _, err := apptCollection.DeleteMany(context.Background(), bson.M{"facilityID": facilityID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete appointments"})
		return
	}

	if _, err := facilityCollection.DeleteOne(context.Background(), bson.M{"facilityID": facilityID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete facility"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Facility deleted"})
}

type UpdateCoordinatorEmailRequest struct {
	FacilityID string `json:"facilityID" binding:"required"`
	NewEmail   string `json:"newEmail" binding:"required,email"`
}

// UpdateCoordinatorEmail đổi email đăng nhập của coordinator. Với guest
// room/vehicle, thay đổi lan sang MỌI facility đang dùng email cũ để cả
// đội vẫn dưới một login. Email thông báo gửi cho cả địa chỉ cũ và mới
// bất kể kết quả update.
func (h *AdminHandler) UpdateCoordinatorEmail(c *gin.Context) {
	var req UpdateCoordinatorEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
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

	// Email mới không được đụng một hall đã có.
	count, err := facilityCollection.CountDocuments(context.Background(), bson.M{"email": req.NewEmail, "kind": models.KindHall})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error checking for facility"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "This email is already registered for a hall"})
		return
	}

	oldEmail := facility.Email

	var updateErr error
	if facility.SharesCoordinatorLogin() {
		// Lan sang toàn bộ đội đang dùng email cũ.
		_, updateErr = facilityCollection.UpdateMany(
			context.Background(),
			bson.M{"email": oldEmail, "kind": bson.M{"$in": []string{models.KindGuestRoom, models.KindVehicle}}},
			bson.M{"$set": bson.M{"email": req.NewEmail}},
		)
	} else {
		_, updateErr = facilityCollection.UpdateOne(
			context.Background(),
			bson.M{"facilityID": req.FacilityID},
			bson.M{"$set": bson.M{"email": req.NewEmail}},
		)
	}

	// Gửi cho cả hai địa chỉ bất kể update thành công hay không.
	h.Notify.Fire(notify.CoordinatorEmailChanged(oldEmail, req.NewEmail))

	if updateErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update coordinator email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Coordinator email updated"})
}

// ListAllAppointments cho admin xem mọi appointment, lọc được theo status.
func (h *AdminHandler) ListAllAppointments(c *gin.Context) {
	filter := bson.M{}
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

// CancelAppointment cho admin hủy bất kỳ appointment nào.
func (h *AdminHandler) CancelAppointment(c *gin.Context) {
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

	decision, err := booking.Cancel(&appt)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
		return
	}

	if !applyDecision(h.DB, &appt, decision, models.StatusEntry{
		Actor:    c.GetString("user_email"),
		Role:     models.RoleAdmin,
		Decision: "cancelled",
		At:       time.Now(),
	}) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Appointment was updated by someone else. Please retry."})
		return
	}

	releaseAppointmentSlots(h.DB, &appt)

	h.Notify.Fire(notify.BookingCancelled(&appt, "the administrator"))
	pushEvent(h.Hub, appt.UserData.Email, "appointment_cancelled", &appt)
	pushEvent(h.Hub, appt.FacilityData.Email, "appointment_cancelled", &appt)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment cancelled"})
}

// Dashboard trả về số liệu tổng quan toàn hệ thống.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	users, _ := h.DB.Collection("users").CountDocuments(context.Background(), bson.M{"role": models.RoleUser})
	facilities, _ := h.DB.Collection("facilities").CountDocuments(context.Background(), bson.M{})
	appointments, _ := h.DB.Collection("appointments").CountDocuments(context.Background(), bson.M{})
	pending, _ := h.DB.Collection("appointments").CountDocuments(context.Background(), bson.M{"status": models.StatusPending})

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(5)
	cursor, err := h.DB.Collection("appointments").Find(context.Background(), bson.M{}, findOptions)
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
			"users":        users,
			"facilities":   facilities,
			"appointments": appointments,
			"pending":      pending,
			"latest":       latest,
		},
	})
}
