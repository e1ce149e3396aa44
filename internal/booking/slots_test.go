package booking

import (
	"reflect"
	"testing"

	"bookmyhall-api-server/internal/models"
)

func TestExpandSlot(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		slot    string
		want    []string
		wantErr bool
	}{
		{"hall morning", models.KindHall, SlotMorning, []string{SlotMorning}, false},
		{"hall afternoon", models.KindHall, SlotAfternoon, []string{SlotAfternoon}, false},
		{"hall full day takes both windows", models.KindHall, SlotFullDay, []string{SlotMorning, SlotAfternoon}, false},
		{"hall unknown label", models.KindHall, "evening", nil, true},
		{"guest room full day", models.KindGuestRoom, SlotFullDay, []string{SlotFullDay}, false},
		{"guest room cannot book half day", models.KindGuestRoom, SlotMorning, nil, true},
		{"vehicle full day", models.KindVehicle, SlotFullDay, []string{SlotFullDay}, false},
		{"vehicle cannot book half day", models.KindVehicle, SlotAfternoon, nil, true},
		{"unknown kind", "warehouse", SlotFullDay, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandSlot(tt.kind, tt.slot)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExpandSlot(%q, %q) error = %v, wantErr %v", tt.kind, tt.slot, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandSlot(%q, %q) = %v, want %v", tt.kind, tt.slot, got, tt.want)
			}
		})
	}
}

func TestHasConflict(t *testing.T) {
	booked := []string{SlotMorning}

	if !HasConflict(booked, []string{SlotMorning}) {
		t.Error("expected conflict when window already booked")
	}
	if HasConflict(booked, []string{SlotAfternoon}) {
		t.Error("did not expect conflict for a free window")
	}
	// Đặt full-day khi một buổi đã kín phải bị chặn.
	if !HasConflict(booked, []string{SlotMorning, SlotAfternoon}) {
		t.Error("expected conflict: full day overlaps a booked half day")
	}
	if HasConflict(nil, []string{SlotFullDay}) {
		t.Error("did not expect conflict against an empty booked set")
	}
}

// Một booking full-day chiếm cả hai buổi; sau đó đặt riêng từng buổi đều
// phải xung đột.
func TestFullDayBlocksHalfDays(t *testing.T) {
	windows, err := ExpandSlot(models.KindHall, SlotFullDay)
	if err != nil {
		t.Fatalf("ExpandSlot full-day: %v", err)
	}

	for _, half := range []string{SlotMorning, SlotAfternoon} {
		requested, err := ExpandSlot(models.KindHall, half)
		if err != nil {
			t.Fatalf("ExpandSlot %s: %v", half, err)
		}
		if !HasConflict(windows, requested) {
			t.Errorf("expected %s to conflict after a full-day booking", half)
		}
	}
}

func TestValidSlotDate(t *testing.T) {
	if !ValidSlotDate("2025-01-10") {
		t.Error("2025-01-10 should be valid")
	}
	for _, bad := range []string{"10-01-2025", "2025/01/10", "2025-13-40", "today", ""} {
		if ValidSlotDate(bad) {
			t.Errorf("%q should be invalid", bad)
		}
	}
}
