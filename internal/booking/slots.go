// Package booking chứa phần lõi nghiệp vụ đặt chỗ: từ vựng khung giờ và
// máy trạng thái duyệt appointment. Các hàm ở đây thuần túy, không chạm DB,
// để handler gọi và test được độc lập.
package booking

import (
	"fmt"
	"time"

	"bookmyhall-api-server/internal/models"
)

// Nhãn khung giờ. Hall có hai buổi cố định hoặc cả ngày; guest room và
// vehicle chỉ có cả ngày.
const (
	SlotMorning   = "morning"   // 09:00 - 13:00
	SlotAfternoon = "afternoon" // 14:00 - 18:00
	SlotFullDay   = "full-day"
)

// ValidSlotDate kiểm tra ngày có đúng định dạng YYYY-MM-DD không.
func ValidSlotDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// ExpandSlot kiểm tra nhãn khung giờ hợp lệ với loại facility và trả về
// danh sách các cửa sổ thực tế sẽ chiếm chỗ. "full-day" trên hall chiếm
// cả hai buổi; trên guest room/vehicle là nhãn duy nhất.
func ExpandSlot(kind, slot string) ([]string, error) {
	switch kind {
	case models.KindHall:
		switch slot {
		case SlotMorning, SlotAfternoon:
			return []string{slot}, nil
		case SlotFullDay:
			return []string{SlotMorning, SlotAfternoon}, nil
		}
		return nil, fmt.Errorf("invalid slot %q for a hall", slot)
	case models.KindGuestRoom, models.KindVehicle:
		if slot == SlotFullDay {
			return []string{SlotFullDay}, nil
		}
		return nil, fmt.Errorf("invalid slot %q: guest rooms and vehicles are booked full-day only", slot)
	}
	return nil, fmt.Errorf("unknown facility kind %q", kind)
}

// HasConflict báo true nếu bất kỳ cửa sổ nào được yêu cầu đã nằm trong
// tập khung giờ đã đặt của ngày đó.
func HasConflict(booked, windows []string) bool {
	for _, w := range windows {
		for _, b := range booked {
			if w == b {
				return true
			}
		}
	}
	return false
}
