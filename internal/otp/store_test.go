package otp

import (
	"context"
	"testing"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 digits", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code %q contains non-digit", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("50 codes should not all be identical")
	}
}

func TestKey(t *testing.T) {
	if got := key(TypeUser, "a@b.com"); got != "otp:user:a@b.com" {
		t.Errorf("key = %q", got)
	}
	if got := key(TypeHall, "hall@b.com"); got != "otp:hall:hall@b.com" {
		t.Errorf("key = %q", got)
	}
}

// Store không kết nối được Redis phải trả ErrUnavailable, không panic.
func TestStoreUnavailable(t *testing.T) {
	s := &Store{client: nil}
	ctx := context.Background()

	if err := s.Put(ctx, TypeUser, "a@b.com", "123456"); err != ErrUnavailable {
		t.Errorf("Put err = %v, want %v", err, ErrUnavailable)
	}
	if err := s.Verify(ctx, TypeUser, "a@b.com", "123456"); err != ErrUnavailable {
		t.Errorf("Verify err = %v, want %v", err, ErrUnavailable)
	}
}
