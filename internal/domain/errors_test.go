package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"already registered", ErrAlreadyRegistered, CodeAlreadyRegistered},
		{"store conflict", fmt.Errorf("create registration: %w", ErrConflict), CodeAlreadyRegistered},
		{"not found wrapped", fmt.Errorf("get event: %w", ErrNotFound), CodeNotFound},
		{"invalid input", ErrInvalidInput, CodeInvalidInput},
		{"invalid schedule", fmt.Errorf("%w: end before start", ErrInvalidSchedule), CodeInvalidSchedule},
		{"missing credential", ErrMissingCredential, CodeMissingCredential},
		{"provider error struct", &ProviderError{Op: "insert", StatusCode: 403, Err: errors.New("quota")}, CodeProviderError},
		{"unauthorized", ErrUnauthorized, CodeUnauthorized},
		{"forbidden", ErrForbidden, CodeForbidden},
		{"unknown", errors.New("boom"), CodeServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestProviderError_PreservesCause(t *testing.T) {
	cause := context.DeadlineExceeded
	err := fmt.Errorf("sync: %w", &ProviderError{Op: "list", Err: cause})

	assert.ErrorIs(t, err, ErrProviderError)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var perr *ProviderError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, "list", perr.Op)
	assert.Equal(t, "calendar provider list: context deadline exceeded", perr.Error())

	withStatus := &ProviderError{Op: "insert", StatusCode: 401, Err: errors.New("invalid credentials")}
	assert.Equal(t, "calendar provider insert: status 401: invalid credentials", withStatus.Error())
}
