package models

import (
	"encoding/json"
	"testing"
)

func TestAppointmentDerivedFlags(t *testing.T) {
	tests := []struct {
		status        string
		wantAccepted  bool
		wantCompleted bool
		wantCancelled bool
		wantActive    bool
	}{
		{StatusPending, false, false, false, true},
		{StatusAwaitingDirector, false, false, false, true},
		{StatusAccepted, true, false, false, true},
		{StatusRejected, false, false, false, false},
		{StatusCancelled, false, false, true, false},
		{StatusCompleted, true, true, false, false},
	}

	for _, tt := range tests {
		a := &Appointment{Status: tt.status}
		if a.IsAccepted() != tt.wantAccepted {
			t.Errorf("%s: IsAccepted = %v", tt.status, a.IsAccepted())
		}
		if a.IsCompleted() != tt.wantCompleted {
			t.Errorf("%s: IsCompleted = %v", tt.status, a.IsCompleted())
		}
		if a.IsCancelled() != tt.wantCancelled {
			t.Errorf("%s: IsCancelled = %v", tt.status, a.IsCancelled())
		}
		if a.IsActive() != tt.wantActive {
			t.Errorf("%s: IsActive = %v", tt.status, a.IsActive())
		}
	}
}

func TestAppointmentJSONKeepsLegacyFlags(t *testing.T) {
	a := Appointment{ApptID: "APPT-a1b2c3d4", Status: StatusCompleted}

	raw, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out["isAccepted"] != true || out["isCompleted"] != true || out["cancelled"] != false {
		t.Errorf("flags = accepted:%v completed:%v cancelled:%v",
			out["isAccepted"], out["isCompleted"], out["cancelled"])
	}
	if out["status"] != StatusCompleted {
		t.Errorf("status = %v", out["status"])
	}
}

func TestFacilityJSON(t *testing.T) {
	f := Facility{FacilityID: "VHCL-a1b2c3d4", Kind: KindVehicle, Name: "Bus 24 seats", Password: "secret"}

	raw, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out["isVehicle"] != true || out["isGuestRoom"] != false {
		t.Errorf("kind flags = guestRoom:%v vehicle:%v", out["isGuestRoom"], out["isVehicle"])
	}
	// Hash mật khẩu không bao giờ được trả về client.
	if _, ok := out["password"]; ok {
		t.Error("password must not be serialized")
	}
}

func TestSharesCoordinatorLogin(t *testing.T) {
	if (&Facility{Kind: KindHall}).SharesCoordinatorLogin() {
		t.Error("hall has its own credentials")
	}
	if !(&Facility{Kind: KindGuestRoom}).SharesCoordinatorLogin() {
		t.Error("guest room shares the fleet login")
	}
	if !(&Facility{Kind: KindVehicle}).SharesCoordinatorLogin() {
		t.Error("vehicle shares the fleet login")
	}
}
