package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"invalid credentials", ErrInvalidCredentials},
		{"invalid input", ErrInvalidInput},
		{"unavailable", ErrUnavailable},
		{"not for sale", ErrNotForSale},
		{"asset missing", ErrAssetMissing},
		{"invalid signature", ErrInvalidSignature},
		{"amount mismatch", ErrAmountMismatch},
		{"forbidden", ErrForbidden},
		{"expired", ErrExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", tc.err)
			if !stdErrors.Is(wrapped, tc.err) {
				t.Fatalf("expected wrapped error to match: %v", tc.err)
			}
		})
	}
}
