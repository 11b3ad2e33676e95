package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEntityName(t *testing.T) {
	t.Run("accepts ordinary names", func(t *testing.T) {
		assert.NoError(t, ValidateEntityName("Quarterly Budget"))
		assert.NoError(t, ValidateEntityName("  padded  "))
		assert.NoError(t, ValidateEntityName("résumé.pdf"))
	})

	t.Run("rejects empty and whitespace-only", func(t *testing.T) {
		assert.Error(t, ValidateEntityName(""))
		assert.Error(t, ValidateEntityName("   "))
	})

	t.Run("rejects path separators", func(t *testing.T) {
		assert.Error(t, ValidateEntityName("a/b"))
		assert.Error(t, ValidateEntityName(`a\b`))
		assert.Error(t, ValidateEntityName("a\x00b"))
	})

	t.Run("rejects over-length names", func(t *testing.T) {
		assert.Error(t, ValidateEntityName(strings.Repeat("x", 256)))
		assert.NoError(t, ValidateEntityName(strings.Repeat("x", 255)))
	})
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("missing@tld"))
}

func TestValidateEntityType(t *testing.T) {
	for _, valid := range []string{"document", "spreadsheet", "presentation", "pdf", "video", "archive", "folder", "text"} {
		assert.NoError(t, ValidateEntityType(valid))
	}
	assert.Error(t, ValidateEntityType("image"))
	assert.Error(t, ValidateEntityType(""))
}
