package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các loại cơ sở. Một facility chỉ có đúng một kind.
const (
	KindHall      = "hall"
	KindGuestRoom = "guest_room"
	KindVehicle   = "vehicle"
)

type Facility struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FacilityID string             `bson:"facilityID" json:"facilityID"` // ID tự tạo, dễ đọc, ví dụ: "HALL-a1b2c3d4"
	Kind       string             `bson:"kind" json:"kind"`             // hall, guest_room, vehicle
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"`
	Speciality string             `bson:"speciality" json:"speciality"` // nhãn phân loại, ví dụ: "Seminar Hall"
	Experience string             `bson:"experience" json:"experience"` // nhãn sức chứa/loại, ví dụ: "120 seats"
	About      string             `bson:"about" json:"about"`
	Address    string             `bson:"address,omitempty" json:"address"` // không bắt buộc đối với vehicle
	Image      string             `bson:"image" json:"image"`               // URL ảnh trên S3/CloudFront
	Available  bool               `bson:"available" json:"available"`
	// SlotsBooked ánh xạ ngày (YYYY-MM-DD) sang danh sách khung giờ đã được đặt.
	SlotsBooked map[string][]string `bson:"slotsBooked" json:"slotsBooked"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}

func (f *Facility) IsGuestRoom() bool { return f.Kind == KindGuestRoom }
func (f *Facility) IsVehicle() bool   { return f.Kind == KindVehicle }

// SharesCoordinatorLogin báo cho biết facility này dùng login coordinator
// dùng chung (guest room và vehicle cùng email dùng chung một password).
func (f *Facility) SharesCoordinatorLogin() bool {
	return f.Kind == KindGuestRoom || f.Kind == KindVehicle
}

// MarshalJSON giữ lại hai cờ isGuestRoom/isVehicle cho client cũ.
func (f Facility) MarshalJSON() ([]byte, error) {
	type alias Facility
	return json.Marshal(struct {
		alias
		IsGuestRoom bool `json:"isGuestRoom"`
		IsVehicle   bool `json:"isVehicle"`
	}{
		alias:       alias(f),
		IsGuestRoom: f.IsGuestRoom(),
		IsVehicle:   f.IsVehicle(),
	})
}

// FacilitySnapshot là bản sao dữ liệu facility được lưu trong appointment
// tại thời điểm đặt chỗ, để giữ lịch sử khi facility bị sửa hoặc xóa.
type FacilitySnapshot struct {
	FacilityID string `bson:"facilityID" json:"facilityID"`
	Kind       string `bson:"kind" json:"kind"`
	Name       string `bson:"name" json:"name"`
	Email      string `bson:"email" json:"email"`
	Speciality string `bson:"speciality" json:"speciality"`
	Experience string `bson:"experience" json:"experience"`
	Address    string `bson:"address,omitempty" json:"address"`
	Image      string `bson:"image" json:"image"`
}

// Snapshot tạo FacilitySnapshot từ facility hiện tại.
func (f *Facility) Snapshot() FacilitySnapshot {
	return FacilitySnapshot{
		FacilityID: f.FacilityID,
		Kind:       f.Kind,
		Name:       f.Name,
		Email:      f.Email,
		Speciality: f.Speciality,
		Experience: f.Experience,
		Address:    f.Address,
		Image:      f.Image,
	}
}
