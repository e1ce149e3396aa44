package booking

import (
	"errors"

	"bookmyhall-api-server/internal/models"
)

// Các lỗi chuyển trạng thái. Handler trả message này thẳng cho client.
var (
	ErrAlreadyCancelled = errors.New("Appointment has been cancelled")
	ErrAlreadyAccepted  = errors.New("Appointment is already accepted")
	ErrAlreadyCompleted = errors.New("Appointment is already completed")
	ErrAlreadyRejected  = errors.New("Appointment has been rejected")
	ErrNotPending       = errors.New("Appointment is not pending")
	ErrNotAccepted      = errors.New("Only an accepted appointment can be completed")
	ErrTerminal         = errors.New("Appointment is in a terminal state")
	ErrNotDirector      = errors.New("Only the director can record this decision")
	ErrNotDirectorKind  = errors.New("Director approval applies to guest rooms and vehicles only")
	ErrNotCoordApproved = errors.New("Coordinator approval is required before the director decision")
	ErrDirectorDecided  = errors.New("Director decision has already been recorded")
	ErrBadDecision      = errors.New("Decision must be either approved or rejected")
)

// Decision là kết quả của một bước chuyển: trạng thái mới và các trường
// quyết định đi kèm. Handler ghi đúng các giá trị này xuống DB bằng một
// update có điều kiện trên trạng thái cũ.
type Decision struct {
	Status              string
	CoordinatorDecision string
	DirectorDecision    string
}

func terminalGuard(a *models.Appointment) error {
	switch a.Status {
	case models.StatusCancelled:
		return ErrAlreadyCancelled
	case models.StatusRejected:
		return ErrAlreadyRejected
	case models.StatusCompleted:
		return ErrAlreadyCompleted
	}
	return nil
}

// CoordinatorAccept: hall được chấp nhận thẳng; guest room/vehicle chuyển
// sang chờ director duyệt tiếp.
func CoordinatorAccept(a *models.Appointment) (Decision, error) {
	if err := terminalGuard(a); err != nil {
		return Decision{}, err
	}
	if a.Status != models.StatusPending {
		return Decision{}, ErrAlreadyAccepted
	}
	if a.FacilityData.Kind == models.KindHall {
		return Decision{
			Status:              models.StatusAccepted,
			CoordinatorDecision: models.DecisionApproved,
			DirectorDecision:    a.DirectorDecision,
		}, nil
	}
	return Decision{
		Status:              models.StatusAwaitingDirector,
		CoordinatorDecision: models.DecisionApproved,
		DirectorDecision:    models.DecisionPending,
	}, nil
}

// CoordinatorReject từ chối một yêu cầu đang pending (terminal).
func CoordinatorReject(a *models.Appointment) (Decision, error) {
	if err := terminalGuard(a); err != nil {
		return Decision{}, err
	}
	if a.Status != models.StatusPending {
		return Decision{}, ErrNotPending
	}
	return Decision{
		Status:              models.StatusRejected,
		CoordinatorDecision: models.DecisionRejected,
		DirectorDecision:    a.DirectorDecision,
	}, nil
}

// DirectorDecide ghi nhận quyết định của director cho guest room/vehicle.
// Chỉ hợp lệ khi coordinator đã duyệt và director chưa quyết định.
func DirectorDecide(a *models.Appointment, actorRole, decision string) (Decision, error) {
	if actorRole != models.RoleDirector {
		return Decision{}, ErrNotDirector
	}
	if decision != models.DecisionApproved && decision != models.DecisionRejected {
		return Decision{}, ErrBadDecision
	}
	if err := terminalGuard(a); err != nil {
		return Decision{}, err
	}
	kind := a.FacilityData.Kind
	if kind != models.KindGuestRoom && kind != models.KindVehicle {
		return Decision{}, ErrNotDirectorKind
	}
	if a.CoordinatorDecision != models.DecisionApproved {
		return Decision{}, ErrNotCoordApproved
	}
	if a.DirectorDecision != models.DecisionPending {
		return Decision{}, ErrDirectorDecided
	}
	next := models.StatusAccepted
	if decision == models.DecisionRejected {
		next = models.StatusRejected
	}
	return Decision{
		Status:              next,
		CoordinatorDecision: a.CoordinatorDecision,
		DirectorDecision:    decision,
	}, nil
}

// Complete chỉ hợp lệ từ trạng thái accepted. Gọi lại lần nữa sẽ bị từ
// chối với ErrAlreadyCompleted thay vì ghi đè âm thầm.
func Complete(a *models.Appointment) (Decision, error) {
	if err := terminalGuard(a); err != nil {
		return Decision{}, err
	}
	if a.Status != models.StatusAccepted {
		return Decision{}, ErrNotAccepted
	}
	return Decision{
		Status:              models.StatusCompleted,
		CoordinatorDecision: a.CoordinatorDecision,
		DirectorDecision:    a.DirectorDecision,
	}, nil
}

// Cancel hợp lệ từ mọi trạng thái chưa terminal.
func Cancel(a *models.Appointment) (Decision, error) {
	if err := terminalGuard(a); err != nil {
		return Decision{}, err
	}
	return Decision{
		Status:              models.StatusCancelled,
		CoordinatorDecision: a.CoordinatorDecision,
		DirectorDecision:    a.DirectorDecision,
	}, nil
}
