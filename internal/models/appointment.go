package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái hợp nhất của một appointment.
const (
	StatusPending          = "pending"
	StatusAwaitingDirector = "awaiting_director" // guest room/vehicle: coordinator đã duyệt, chờ director
	StatusAccepted         = "accepted"
	StatusRejected         = "rejected"
	StatusCancelled        = "cancelled"
	StatusCompleted        = "completed"
)

// Quyết định của coordinator/director.
const (
	DecisionPending  = "pending"
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// StatusEntry là một dòng trong lịch sử quyết định (append-only).
type StatusEntry struct {
	Actor    string    `bson:"actor" json:"actor"` // email của người thao tác
	Role     string    `bson:"role" json:"role"`
	Decision string    `bson:"decision" json:"decision"`
	Comment  string    `bson:"comment,omitempty" json:"comment,omitempty"`
	At       time.Time `bson:"at" json:"at"`
}

type Appointment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ApptID     string             `bson:"apptID" json:"apptID"` // ví dụ: "APPT-a1b2c3d4"
	UserID     string             `bson:"userID" json:"userID"`
	FacilityID string             `bson:"facilityID" json:"facilityID"`

	// Bản sao dữ liệu tại thời điểm đặt chỗ.
	UserData     UserSnapshot     `bson:"userData" json:"userData"`
	FacilityData FacilitySnapshot `bson:"facilityData" json:"facilityData"`

	SlotDate string `bson:"slotDate" json:"slotDate"` // YYYY-MM-DD
	SlotTime string `bson:"slotTime" json:"slotTime"` // nhãn khung giờ, xem internal/booking
	Reason   string `bson:"reason,omitempty" json:"reason,omitempty"`

	Status              string        `bson:"status" json:"status"`
	CoordinatorDecision string        `bson:"coordinatorDecision" json:"coordinatorDecision"`
	DirectorDecision    string        `bson:"directorDecision" json:"directorDecision"`
	StatusHistory       []StatusEntry `bson:"statusHistory,omitempty" json:"statusHistory,omitempty"`

	CreatedAt int64 `bson:"createdAt" json:"createdAt"` // unix millis
}

// IsAccepted là view dẫn xuất cho client cũ: appointment đã qua mọi cửa duyệt.
func (a *Appointment) IsAccepted() bool {
	return a.Status == StatusAccepted || a.Status == StatusCompleted
}

func (a *Appointment) IsCompleted() bool { return a.Status == StatusCompleted }
func (a *Appointment) IsCancelled() bool { return a.Status == StatusCancelled }

// IsActive: appointment còn giữ slot (chưa bị hủy, chưa bị từ chối, chưa hoàn tất).
func (a *Appointment) IsActive() bool {
	switch a.Status {
	case StatusCancelled, StatusRejected, StatusCompleted:
		return false
	}
	return true
}

// MarshalJSON bổ sung các cờ boolean dẫn xuất để tương thích hiển thị.
func (a Appointment) MarshalJSON() ([]byte, error) {
	type alias Appointment
	return json.Marshal(struct {
		alias
		IsAccepted  bool `json:"isAccepted"`
		IsCompleted bool `json:"isCompleted"`
		Cancelled   bool `json:"cancelled"`
	}{
		alias:       alias(a),
		IsAccepted:  a.IsAccepted(),
		IsCompleted: a.IsCompleted(),
		Cancelled:   a.IsCancelled(),
	})
}
