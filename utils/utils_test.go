package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"teamcal/config"
	"teamcal/models"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, fiber.StatusOK},
		{NewError(ErrUnauthenticated, "no session"), fiber.StatusUnauthorized},
		{NewError(ErrForbidden, "forbidden"), fiber.StatusForbidden},
		{fmt.Errorf("lookup: %w", NewError(ErrNotFound, "event not found")), fiber.StatusNotFound},
		{ErrValidation, fiber.StatusBadRequest},
		{NewError(ErrConflict, "email already exists"), fiber.StatusConflict},
		{errors.New("connection reset"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), "%v", tc.err)
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Event not found", ErrorMessage(NewError(ErrNotFound, "event not found"), "Failed"))
	assert.Equal(t, "Conflict", ErrorMessage(fmt.Errorf("insert: %w", ErrConflict), "Failed"))
	assert.Equal(t, "Failed", ErrorMessage(errors.New("pq: relation does not exist"), "Failed"))
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Email  string `validate:"required,mailbox"`
		Name   string `validate:"required,max=5"`
		Status string `validate:"omitempty,oneof=accepted declined"`
	}

	require.NoError(t, ValidateStruct(input{Email: "ada@example.com", Name: "Ada"}))

	err := ValidateStruct(input{Email: "not-an-email", Name: "Adalovelace", Status: "maybe"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t,
		"email must be a valid email, name must be at most 5 characters, status must be one of: accepted, declined",
		err.Error())
}

func TestValidateStruct_UsesJSONNames(t *testing.T) {
	type input struct {
		ParticipantIDs []uint `json:"participantIds,omitempty" validate:"required,max=2"`
		StartTime      string `json:"startTime" validate:"required,min=3"`
		Budget         int64  `json:"budget" validate:"min=0"`
		Internal       string `json:"-" validate:"required"`
	}

	err := ValidateStruct(input{ParticipantIDs: []uint{1, 2, 3}, StartTime: "x", Budget: -1})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t,
		"participantIds must be at most 2 items, startTime must be at least 3 characters, budget must be at least 0, internal is required",
		err.Error())
}

func TestErrorMessage_KeepsValidationTextAsWritten(t *testing.T) {
	type input struct {
		StartTime string `json:"startTime" validate:"required"`
		EndTime   string `json:"endTime" validate:"required"`
	}
	err := ValidateStruct(input{})
	require.Error(t, err)
	assert.Equal(t, "startTime is required, endTime is required", ErrorMessage(err, "Failed"))
	assert.Equal(t, fiber.StatusBadRequest, StatusFor(err))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), d)

	ts, err := ParseDate("2025-01-01T09:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 9, ts.Hour())

	_, err = ParseDate("tomorrow")
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	config.AppConfig.JWTSecret = "unit-test-secret"
	config.AppConfig.AccessTokenTTL = time.Minute
	config.AppConfig.RefreshTokenTTL = time.Hour

	user := &models.User{ID: 7, Role: models.RoleEmployee}
	access, refresh, session, err := GenerateJWTToken(user)
	require.NoError(t, err)

	claims, err := ParseJWTToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleEmployee, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, session, claims.SessionID)

	claims, err = ParseJWTToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)

	config.AppConfig.JWTSecret = "rotated"
	_, err = ParseJWTToken(access)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "other"))
}
