package validate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanvo/bookverse-api/internal/validate"
)

func TestPassword(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		wantErr string
	}{
		{"ok", "Abc12345", ""},
		{"missing uppercase", "abc12345", "uppercase"},
		{"missing lowercase", "ABC12345", "lowercase"},
		{"missing digit", "Abcdefgh", "digit"},
		{"too short", "Ab1", "8-16"},
		{"too long", "Abc1234567890123456789", "8-16"},
		{"special chars rejected", "Abc12345!", "letters, digits and underscore"},
		{"underscore allowed", "Abc_12345", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Password(tt.pwd)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPhone(t *testing.T) {
	assert.NoError(t, validate.Phone("0912345678"))
	assert.NoError(t, validate.Phone("0345678901"))
	assert.Error(t, validate.Phone("0112345678"))  // second digit out of range
	assert.Error(t, validate.Phone("091234567"))   // 9 digits
	assert.Error(t, validate.Phone("09123456789")) // 11 digits
	assert.Error(t, validate.Phone("9123456780"))  // no leading zero
	assert.Error(t, validate.Phone("09a2345678"))
}

func TestPublishedDate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	d, err := validate.PublishedDate("2024-02-29", now) // leap day is real
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = validate.PublishedDate("2024-02-30", now)
	assert.Error(t, err, "impossible calendar date must be rejected, not normalized")

	_, err = validate.PublishedDate("2023-02-29", now)
	assert.Error(t, err)

	_, err = validate.PublishedDate("2025-01-01", now)
	assert.Error(t, err, "future dates are rejected")

	_, err = validate.PublishedDate("01/02/2024", now)
	assert.Error(t, err)
}

func TestPrice(t *testing.T) {
	assert.NoError(t, validate.Price(0))
	assert.NoError(t, validate.Price(19.99))
	assert.NoError(t, validate.Price(99999.99))
	assert.Error(t, validate.Price(-0.01))
	assert.Error(t, validate.Price(100000))
	assert.Error(t, validate.Price(9.999))
}

func TestEmail(t *testing.T) {
	assert.NoError(t, validate.Email("reader@example.com"))
	assert.Error(t, validate.Email("reader@"))
	assert.Error(t, validate.Email("not-an-email"))
	assert.Error(t, validate.Email("a b@example.com"))
}

func TestCartQuantity(t *testing.T) {
	assert.NoError(t, validate.CartQuantity(1))
	assert.Error(t, validate.CartQuantity(0))
	assert.Error(t, validate.CartQuantity(-3))
}

func TestRequireBounded(t *testing.T) {
	got, err := validate.RequireBounded("title", "  Dune  ", 1, 200)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got)

	_, err = validate.RequireBounded("title", "   ", 1, 200)
	assert.Error(t, err)
}
