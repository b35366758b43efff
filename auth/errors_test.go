package auth

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrMissingCredentials,
		ErrInvalidCredentials,
		ErrTokenExpired,
		ErrTokenMalformed,
		ErrKeyNotFound,
		ErrJWKSFetch,
		ErrForbidden,
	}
	for _, err := range sentinels {
		if !strings.HasPrefix(err.Error(), "auth: ") {
			t.Errorf("%q lacks the auth: prefix", err)
		}
		if wrapped := fmt.Errorf("ctx: %w", err); !errors.Is(wrapped, err) {
			t.Errorf("errors.Is(wrapped, %v) = false", err)
		}
	}
}
