// Package notify tách việc gửi email khỏi đường đi của request: handler chỉ
// publish sự kiện vào một queue bền; worker chạy nền nhận và gửi SMTP.
// Trạng thái đặt chỗ luôn được commit trước, mất email không làm hỏng dữ liệu.
package notify

import (
	"fmt"
	"time"

	"bookmyhall-api-server/internal/models"
)

// QueueName là queue chứa các sự kiện thông báo email.
const QueueName = "bookmyhall.notifications"

// Event là một email chờ gửi.
type Event struct {
	Type    string    `json:"type"`
	To      []string  `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	At      time.Time `json:"at"`
}

func apptLine(a *models.Appointment) string {
	return fmt.Sprintf("%s on %s (%s)", a.FacilityData.Name, a.SlotDate, a.SlotTime)
}

// BookingCreated báo cho coordinator có yêu cầu đặt chỗ mới.
func BookingCreated(a *models.Appointment) Event {
	return Event{
		Type:    "booking_created",
		To:      []string{a.FacilityData.Email},
		Subject: "New booking request: " + a.FacilityData.Name,
		Body: fmt.Sprintf("%s has requested %s.\nReason: %s",
			a.UserData.Name, apptLine(a), a.Reason),
		At: time.Now(),
	}
}

// BookingAccepted báo cho user yêu cầu đã được chấp nhận.
func BookingAccepted(a *models.Appointment) Event {
	return Event{
		Type:    "booking_accepted",
		To:      []string{a.UserData.Email},
		Subject: "Booking accepted: " + a.FacilityData.Name,
		Body:    fmt.Sprintf("Your booking for %s has been accepted.", apptLine(a)),
		At:      time.Now(),
	}
}

// BookingAwaitingDirector báo cho user yêu cầu đã qua coordinator, chờ director.
func BookingAwaitingDirector(a *models.Appointment) Event {
	return Event{
		Type:    "booking_awaiting_director",
		To:      []string{a.UserData.Email},
		Subject: "Booking forwarded for director approval: " + a.FacilityData.Name,
		Body:    fmt.Sprintf("Your booking for %s was approved by the coordinator and now awaits the director's decision.", apptLine(a)),
		At:      time.Now(),
	}
}

// BookingRejected báo cho user yêu cầu bị từ chối.
func BookingRejected(a *models.Appointment, comment string) Event {
	body := fmt.Sprintf("Your booking for %s has been rejected.", apptLine(a))
	if comment != "" {
		body += "\nComment: " + comment
	}
	return Event{
		Type:    "booking_rejected",
		To:      []string{a.UserData.Email},
		Subject: "Booking rejected: " + a.FacilityData.Name,
		Body:    body,
		At:      time.Now(),
	}
}

// BookingCancelled báo cho cả user và coordinator về việc hủy.
func BookingCancelled(a *models.Appointment, cancelledBy string) Event {
	return Event{
		Type:    "booking_cancelled",
		To:      []string{a.UserData.Email, a.FacilityData.Email},
		Subject: "Booking cancelled: " + a.FacilityData.Name,
		Body:    fmt.Sprintf("The booking for %s was cancelled by %s.", apptLine(a), cancelledBy),
		At:      time.Now(),
	}
}

// BookingCompleted báo cho user appointment đã hoàn tất, có thể gửi feedback.
func BookingCompleted(a *models.Appointment) Event {
	return Event{
		Type:    "booking_completed",
		To:      []string{a.UserData.Email},
		Subject: "Booking completed: " + a.FacilityData.Name,
		Body:    fmt.Sprintf("Your booking for %s is marked completed. You can now submit feedback.", apptLine(a)),
		At:      time.Now(),
	}
}

// FacilityDeleted báo cho user appointment bị hủy vì facility bị xóa.
func FacilityDeleted(a *models.Appointment) Event {
	return Event{
		Type:    "facility_deleted",
		To:      []string{a.UserData.Email},
		Subject: "Booking cancelled: " + a.FacilityData.Name,
		Body:    fmt.Sprintf("Your booking for %s was cancelled because the facility has been removed.", apptLine(a)),
		At:      time.Now(),
	}
}

// CoordinatorEmailChanged gửi cho cả địa chỉ cũ và mới.
func CoordinatorEmailChanged(oldEmail, newEmail string) Event {
	return Event{
		Type:    "coordinator_email_changed",
		To:      []string{oldEmail, newEmail},
		Subject: "Coordinator login email changed",
		Body:    fmt.Sprintf("The coordinator login email was changed from %s to %s.", oldEmail, newEmail),
		At:      time.Now(),
	}
}

// OTPCode gửi mã đặt lại mật khẩu.
func OTPCode(email, code string) Event {
	return Event{
		Type:    "otp_code",
		To:      []string{email},
		Subject: "Password reset code",
		Body:    fmt.Sprintf("Your password reset code is %s. It expires in 5 minutes.", code),
		At:      time.Now(),
	}
}
