package util

import (
	"errors"
	"quizify_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHoursMinutes(t *testing.T) {
	assert.Equal(t, "0h 0m", FormatHoursMinutes(0))
	assert.Equal(t, "0h 1m", FormatHoursMinutes(119))
	assert.Equal(t, "1h 1m", FormatHoursMinutes(3661))
	assert.Equal(t, "26h 0m", FormatHoursMinutes(26*3600+59))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00", FormatClock(0))
	assert.Equal(t, "1:05", FormatClock(65))
	assert.Equal(t, "30:00", FormatClock(1800))
}

func TestDetectMimeType(t *testing.T) {
	mime, err := DetectMimeType([]byte("%PDF-1.7\n%âãÏÓ\n1 0 obj"), AllowedDocumentTypes)
	require.NoError(t, err)
	assert.Equal(t, MimePDF, mime)
	assert.Equal(t, ".pdf", ExtensionFor(mime, "notes.bin"))

	mime, err = DetectMimeType([]byte("Stacks and queues are data structures."), AllowedDocumentTypes)
	require.NoError(t, err)
	assert.Equal(t, ".txt", ExtensionFor(mime, "notes"))

	_, err = DetectMimeType([]byte("\x89PNG\r\n\x1a\n"), AllowedDocumentTypes)
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{ID: "u-1", Name: "Ada", Email: "ada@example.com", Role: model.Teacher}

	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, model.Teacher, claims.Role)
	assert.NotEmpty(t, claims.ID)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)

	expired, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)
}
