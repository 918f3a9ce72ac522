package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubMembership struct {
	member bool
	err    error
}

func (s stubMembership) IsMember(context.Context, int64, int64) (bool, error) {
	return s.member, s.err
}

func TestRequireMember(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, RequireMember(ctx, stubMembership{member: true}, 1, 1))
	assert.ErrorIs(t, RequireMember(ctx, stubMembership{}, 1, 1), ErrForbidden)

	boom := errors.New("db down")
	assert.ErrorIs(t, RequireMember(ctx, stubMembership{err: boom}, 1, 1), boom)
}

func TestValidationError_Is(t *testing.T) {
	err := NewValidationError("name", "too short", "quantity")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, map[string]string{"name": "too short"}, err.Fields)
}
