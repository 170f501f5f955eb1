package common

import (
	"errors"
	"fmt"
	"testing"
)

// ---------- NormalizeLogin ----------

func TestNormalizeLogin(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Alice", "alice"},
		{"  Bob@Example.COM ", "bob@example.com"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeLogin(tt.in); got != tt.want {
			t.Fatalf("NormalizeLogin(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- errors ----------

func TestSentinels_SurviveWrapping(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenExpired)
	if !errors.Is(err, ErrInvalidToken) || !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("wrapped error lost a sentinel: %v", err)
	}
	if errors.Is(err, ErrTokenReuseDetected) {
		t.Fatalf("unexpected match with ErrTokenReuseDetected")
	}
}
