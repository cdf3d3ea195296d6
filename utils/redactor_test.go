package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactor_URL(t *testing.T) {
	r := NewRedactor()

	out := r.Redact("看看这个 https://example.com/a?b=1 好不好")

	assert.NotContains(t, out, "example.com")
	assert.Contains(t, out, "URL_")
	assert.True(t, strings.HasPrefix(out, "看看这个 "))
}

func TestRedactor_EmailAndPhone(t *testing.T) {
	r := NewRedactor()

	out := r.Redact("mail me at user@example.com or call 13812345678")

	assert.NotContains(t, out, "user@example.com")
	assert.NotContains(t, out, "13812345678")
	assert.Contains(t, out, "EMAIL_")
	assert.Contains(t, out, "PHONE_")
}

func TestRedactor_StablePlaceholder(t *testing.T) {
	r := NewRedactor()

	a := r.Redact("ping 192.168.1.100")
	b := r.Redact("ping 192.168.1.100")

	assert.Equal(t, a, b)
	assert.NotContains(t, a, "192.168.1.100")
}

func TestRedactor_PlainTextUntouched(t *testing.T) {
	r := NewRedactor()

	assert.Equal(t, "今天天气不错", r.Redact("今天天气不错"))
	assert.Equal(t, "", r.Redact(""))
}

func TestRedactor_AddPattern(t *testing.T) {
	r := NewRedactor()

	require.NoError(t, r.AddPattern("Code", `ABC-\d+`, "CODE_%s", 90))
	assert.Contains(t, r.Redact("ticket ABC-42"), "CODE_")

	assert.Error(t, r.AddPattern("Broken", `(`, "X_%s", 1))
}
