package middleware

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractResource_SimplePath(t *testing.T) {
	resType, resID := extractResource("/api/v1/mailings")
	assert.NotNil(t, resType)
	assert.Equal(t, "mailings", *resType)
	assert.Nil(t, resID)
}

func TestExtractResource_WithID(t *testing.T) {
	resType, resID := extractResource("/api/v1/mailings/abc-123")
	assert.NotNil(t, resType)
	assert.Equal(t, "mailings", *resType)
	assert.NotNil(t, resID)
	assert.Equal(t, "abc-123", *resID)
}

func TestExtractResource_Action(t *testing.T) {
	resType, resID := extractResource("/api/v1/mailings/abc-123/send")
	assert.NotNil(t, resType)
	assert.Equal(t, "mailings", *resType)
	assert.NotNil(t, resID)
	assert.Equal(t, "abc-123", *resID)
}

func TestSanitizeBody(t *testing.T) {
	body := []byte(`{"name":"test","password":"secret123","token":"mlt_abc"}`)
	sanitized := sanitizeBody(body)

	var result map[string]any
	json.Unmarshal(sanitized, &result)
	assert.Equal(t, "test", result["name"])
	assert.Equal(t, "[REDACTED]", result["password"])
	assert.Equal(t, "[REDACTED]", result["token"])
}

func TestSanitizeBody_InvalidJSON(t *testing.T) {
	body := []byte(`not json`)
	assert.Equal(t, json.RawMessage(body), sanitizeBody(body))
}
