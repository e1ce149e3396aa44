package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CoordinatorReply là phản hồi của coordinator cho một feedback.
// UI chỉ cho phép phản hồi một lần; backend không khóa chỉnh sửa.
type CoordinatorReply struct {
	Rating     int       `bson:"rating" json:"rating"`
	Message    string    `bson:"message" json:"message"`
	ReviewedAt time.Time `bson:"reviewedAt" json:"reviewedAt"`
}

// Feedback là đánh giá của user cho một appointment đã hoàn tất.
// Tối đa một feedback cho mỗi cặp (appointment, user).
type Feedback struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FeedbackID string             `bson:"feedbackID" json:"feedbackID"` // ví dụ: "FDBK-a1b2c3d4"
	ApptID     string             `bson:"apptID" json:"apptID"`
	FacilityID string             `bson:"facilityID" json:"facilityID"`
	UserID     string             `bson:"userID" json:"userID"`

	Rating           int    `bson:"rating" json:"rating"` // 1-5
	Cleanliness      string `bson:"cleanliness,omitempty" json:"cleanliness,omitempty"`
	DescriptionMatch string `bson:"descriptionMatch,omitempty" json:"descriptionMatch,omitempty"`
	Electricity      string `bson:"electricity,omitempty" json:"electricity,omitempty"`
	Comments         string `bson:"comments,omitempty" json:"comments,omitempty"`

	Reply     *CoordinatorReply `bson:"reply,omitempty" json:"reply,omitempty"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
}

// FacilityRating là kết quả gom nhóm điểm đánh giá theo facility.
type FacilityRating struct {
	FacilityID string  `bson:"_id" json:"facilityID"`
	Average    float64 `bson:"average" json:"average"`
	Count      int64   `bson:"count" json:"count"`
}
