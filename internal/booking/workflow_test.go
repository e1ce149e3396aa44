package booking

import (
	"testing"

	"bookmyhall-api-server/internal/models"
)

func appt(kind, status, coord, director string) *models.Appointment {
	return &models.Appointment{
		ApptID:              "APPT-test0001",
		Status:              status,
		CoordinatorDecision: coord,
		DirectorDecision:    director,
		FacilityData:        models.FacilitySnapshot{Kind: kind},
	}
}

func TestCoordinatorAcceptHall(t *testing.T) {
	a := appt(models.KindHall, models.StatusPending, models.DecisionPending, models.DecisionPending)

	d, err := CoordinatorAccept(a)
	if err != nil {
		t.Fatalf("CoordinatorAccept: %v", err)
	}
	if d.Status != models.StatusAccepted {
		t.Errorf("hall should be accepted directly, got %q", d.Status)
	}
	if d.CoordinatorDecision != models.DecisionApproved {
		t.Errorf("coordinatorDecision = %q, want approved", d.CoordinatorDecision)
	}
}

func TestCoordinatorAcceptGuestRoomAwaitsDirector(t *testing.T) {
	for _, kind := range []string{models.KindGuestRoom, models.KindVehicle} {
		a := appt(kind, models.StatusPending, models.DecisionPending, models.DecisionPending)

		d, err := CoordinatorAccept(a)
		if err != nil {
			t.Fatalf("CoordinatorAccept(%s): %v", kind, err)
		}
		if d.Status != models.StatusAwaitingDirector {
			t.Errorf("%s should await director, got %q", kind, d.Status)
		}
		if d.DirectorDecision != models.DecisionPending {
			t.Errorf("%s directorDecision = %q, want pending", kind, d.DirectorDecision)
		}
	}
}

func TestCoordinatorAcceptGuards(t *testing.T) {
	tests := []struct {
		name    string
		a       *models.Appointment
		wantErr error
	}{
		{"cancelled", appt(models.KindHall, models.StatusCancelled, models.DecisionPending, models.DecisionPending), ErrAlreadyCancelled},
		{"rejected", appt(models.KindHall, models.StatusRejected, models.DecisionRejected, models.DecisionPending), ErrAlreadyRejected},
		{"completed", appt(models.KindHall, models.StatusCompleted, models.DecisionApproved, models.DecisionPending), ErrAlreadyCompleted},
		{"already accepted", appt(models.KindHall, models.StatusAccepted, models.DecisionApproved, models.DecisionPending), ErrAlreadyAccepted},
		{"awaiting director", appt(models.KindGuestRoom, models.StatusAwaitingDirector, models.DecisionApproved, models.DecisionPending), ErrAlreadyAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CoordinatorAccept(tt.a); err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDirectorDecide(t *testing.T) {
	ready := func(kind string) *models.Appointment {
		return appt(kind, models.StatusAwaitingDirector, models.DecisionApproved, models.DecisionPending)
	}

	d, err := DirectorDecide(ready(models.KindGuestRoom), models.RoleDirector, models.DecisionApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if d.Status != models.StatusAccepted || d.DirectorDecision != models.DecisionApproved {
		t.Errorf("approve = %+v", d)
	}

	d, err = DirectorDecide(ready(models.KindVehicle), models.RoleDirector, models.DecisionRejected)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if d.Status != models.StatusRejected || d.DirectorDecision != models.DecisionRejected {
		t.Errorf("reject = %+v", d)
	}
}

func TestDirectorDecideGuards(t *testing.T) {
	tests := []struct {
		name     string
		a        *models.Appointment
		role     string
		decision string
		wantErr  error
	}{
		{
			"not director",
			appt(models.KindGuestRoom, models.StatusAwaitingDirector, models.DecisionApproved, models.DecisionPending),
			models.RoleHall, models.DecisionApproved, ErrNotDirector,
		},
		{
			"bad decision value",
			appt(models.KindGuestRoom, models.StatusAwaitingDirector, models.DecisionApproved, models.DecisionPending),
			models.RoleDirector, "maybe", ErrBadDecision,
		},
		{
			"hall never reaches the director",
			appt(models.KindHall, models.StatusAccepted, models.DecisionApproved, models.DecisionPending),
			models.RoleDirector, models.DecisionApproved, ErrNotDirectorKind,
		},
		{
			// Director không thể nhảy cóc qua coordinator.
			"coordinator has not approved",
			appt(models.KindGuestRoom, models.StatusPending, models.DecisionPending, models.DecisionPending),
			models.RoleDirector, models.DecisionApproved, ErrNotCoordApproved,
		},
		{
			"director already decided",
			appt(models.KindVehicle, models.StatusAccepted, models.DecisionApproved, models.DecisionApproved),
			models.RoleDirector, models.DecisionApproved, ErrDirectorDecided,
		},
		{
			"cancelled before the director acted",
			appt(models.KindGuestRoom, models.StatusCancelled, models.DecisionApproved, models.DecisionPending),
			models.RoleDirector, models.DecisionApproved, ErrAlreadyCancelled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DirectorDecide(tt.a, tt.role, tt.decision); err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	a := appt(models.KindHall, models.StatusAccepted, models.DecisionApproved, models.DecisionPending)
	d, err := Complete(a)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if d.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", d.Status)
	}

	// Gọi lại sau khi đã completed phải bị từ chối, không phải no-op.
	a.Status = models.StatusCompleted
	if _, err := Complete(a); err != ErrAlreadyCompleted {
		t.Errorf("second complete err = %v, want %v", err, ErrAlreadyCompleted)
	}

	pending := appt(models.KindHall, models.StatusPending, models.DecisionPending, models.DecisionPending)
	if _, err := Complete(pending); err != ErrNotAccepted {
		t.Errorf("complete a pending appointment err = %v, want %v", err, ErrNotAccepted)
	}
}

func TestCancel(t *testing.T) {
	for _, status := range []string{models.StatusPending, models.StatusAwaitingDirector, models.StatusAccepted} {
		a := appt(models.KindGuestRoom, status, models.DecisionPending, models.DecisionPending)
		d, err := Cancel(a)
		if err != nil {
			t.Fatalf("Cancel from %s: %v", status, err)
		}
		if d.Status != models.StatusCancelled {
			t.Errorf("Cancel from %s: status = %q", status, d.Status)
		}
	}

	cancelled := appt(models.KindHall, models.StatusCancelled, models.DecisionPending, models.DecisionPending)
	if _, err := Cancel(cancelled); err != ErrAlreadyCancelled {
		t.Errorf("cancel twice err = %v, want %v", err, ErrAlreadyCancelled)
	}
	completed := appt(models.KindHall, models.StatusCompleted, models.DecisionApproved, models.DecisionPending)
	if _, err := Cancel(completed); err != ErrAlreadyCompleted {
		t.Errorf("cancel after complete err = %v, want %v", err, ErrAlreadyCompleted)
	}
}

func TestCoordinatorReject(t *testing.T) {
	a := appt(models.KindHall, models.StatusPending, models.DecisionPending, models.DecisionPending)
	d, err := CoordinatorReject(a)
	if err != nil {
		t.Fatalf("CoordinatorReject: %v", err)
	}
	if d.Status != models.StatusRejected || d.CoordinatorDecision != models.DecisionRejected {
		t.Errorf("reject = %+v", d)
	}

	accepted := appt(models.KindHall, models.StatusAccepted, models.DecisionApproved, models.DecisionPending)
	if _, err := CoordinatorReject(accepted); err != ErrNotPending {
		t.Errorf("reject after accept err = %v, want %v", err, ErrNotPending)
	}
}
