package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"john@example.com", "j***@*******.com"},
		{"a@site.org", "a@****.org"},
		{"not-an-email", "[invalid-email]"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizedEmail(tt.in), tt.in)
	}
}

func TestRedactQuery(t *testing.T) {
	assert.Equal(t, "[REDACTED]", RedactQuery("access_token=abc"))
	assert.Equal(t, "[REDACTED]", RedactQuery("Email=x@y.z"))
	assert.Equal(t, "startIndex=0&limit=9&sort=asc", RedactQuery("startIndex=0&limit=9&sort=asc"))
	assert.Equal(t, "", RedactQuery(""))
}

func TestAuditLogger_LogAuthAttempt_MasksEmail(t *testing.T) {
	var buf bytes.Buffer
	audit := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	audit.LogAuthAttempt(context.Background(), AuditEvent{
		EventType:     EventLogin,
		Email:         "john@example.com",
		Success:       false,
		FailureReason: "invalid_password",
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "auth", line["audit_type"])
	assert.Equal(t, "j***@*******.com", line["email"])
	assert.Equal(t, "invalid_password", line["failure_reason"])
}
