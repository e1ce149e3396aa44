package handlers

import (
	"context"
	"log"

	"bookmyhall-api-server/internal/booking"
	"bookmyhall-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// applyDecision ghi một bước chuyển trạng thái xuống DB bằng update có
// điều kiện trên trạng thái cũ: nếu một request song song đã chuyển trước,
// ModifiedCount là 0 và caller phải báo conflict thay vì ghi đè.
// Khi thành công, appt được cập nhật tại chỗ để caller dùng cho thông báo.
func applyDecision(db *mongo.Database, appt *models.Appointment, decision booking.Decision, entry models.StatusEntry) bool {
	filter := bson.M{"apptID": appt.ApptID, "status": appt.Status}
	update := bson.M{
		"$set": bson.M{
			"status":              decision.Status,
			"coordinatorDecision": decision.CoordinatorDecision,
			"directorDecision":    decision.DirectorDecision,
		},
		"$push": bson.M{"statusHistory": entry},
	}

	result, err := db.Collection("appointments").UpdateOne(context.Background(), filter, update)
	if err != nil {
		log.Printf("appointments: decision update failed for %s: %v", appt.ApptID, err)
		return false
	}
	if result.ModifiedCount == 0 {
		return false
	}

	appt.Status = decision.Status
	appt.CoordinatorDecision = decision.CoordinatorDecision
	appt.DirectorDecision = decision.DirectorDecision
	appt.StatusHistory = append(appt.StatusHistory, entry)
	return true
}

// releaseSlots gỡ đúng các cửa sổ đã giữ ra khỏi slotsBooked[date].
func releaseSlots(db *mongo.Database, facilityID, date string, windows []string) {
	slotField := "slotsBooked." + date
	_, err := db.Collection("facilities").UpdateOne(
		context.Background(),
		bson.M{"facilityID": facilityID},
		bson.M{"$pullAll": bson.M{slotField: windows}},
	)
	if err != nil {
		log.Printf("appointments: failed to release slots for facility %s on %s: %v", facilityID, date, err)
	}
}

// releaseAppointmentSlots trả lại slot mà appointment này đang giữ.
// Loại facility lấy từ snapshot để vẫn đúng khi facility đã bị sửa.
func releaseAppointmentSlots(db *mongo.Database, appt *models.Appointment) {
	windows, err := booking.ExpandSlot(appt.FacilityData.Kind, appt.SlotTime)
	if err != nil {
		log.Printf("appointments: cannot expand slot %q for %s: %v", appt.SlotTime, appt.ApptID, err)
		return
	}
	releaseSlots(db, appt.FacilityID, appt.SlotDate, windows)
}
