package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelftrack/internal/domain"
)

func TestValidatorCollectsFirstFailurePerField(t *testing.T) {
	v := New()
	v.Check(false, "name", "name is required")
	v.Check(false, "name", "name must not exceed 255 characters")
	v.Check(true, "email", "email is required")

	assert.False(t, v.Valid())
	assert.Equal(t, "name is required", v.Errors["name"])
	assert.NotContains(t, v.Errors, "email")
}

func TestValidatorErr(t *testing.T) {
	v := New()
	v.Check(false, "email", "email must be a valid email address")

	err := v.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "email must be a valid email address", validationErr.Fields["email"])
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("budi@example.com"))
	assert.True(t, IsEmail("a.b+c@sub.domain.org"))
	assert.False(t, IsEmail("not-an-email"))
	assert.False(t, IsEmail("@example.com"))
	assert.False(t, IsEmail("user@"))
	assert.False(t, IsEmail(""))
}

func TestIsDate(t *testing.T) {
	assert.True(t, IsDate("2024-01-10"))
	assert.False(t, IsDate("10-01-2024"))
	assert.False(t, IsDate("2024-13-01"))
	assert.False(t, IsDate(""))
}

func TestCharBounds(t *testing.T) {
	assert.True(t, MaxChars("abc", 3))
	assert.False(t, MaxChars("abcd", 3))
	assert.True(t, MinChars("abcdef", 6))
	assert.False(t, MinChars("abcde", 6))

	// Rune count, not byte count.
	assert.True(t, MaxChars("füñf!", 5))
}
