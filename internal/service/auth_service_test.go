package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelftrack/internal/domain"
)

func TestRegisterIssuesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, token, err := env.auth.Register(ctx, domain.RegisterInput{
		Name:     "Dewi Lestari",
		Email:    "dewi@shelftrack.test",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, user.Role)
	assert.NotEmpty(t, token)

	resolved, err := env.auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.auth.Register(ctx, domain.RegisterInput{
		Name:     "First",
		Email:    "taken@shelftrack.test",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, _, err = env.auth.Register(ctx, domain.RegisterInput{
		Name:     "Second",
		Email:    "taken@shelftrack.test",
		Password: "secret123",
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.auth.Register(ctx, domain.RegisterInput{
		Name:     "",
		Email:    "bad-email",
		Password: "short",
	})
	require.Error(t, err)

	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields, "name")
	assert.Contains(t, validationErr.Fields, "email")
	assert.Contains(t, validationErr.Fields, "password")
}

func TestLoginAndLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.auth.Register(ctx, domain.RegisterInput{
		Name:     "Budi Santoso",
		Email:    "budi@shelftrack.test",
		Password: "secret123",
	})
	require.NoError(t, err)

	user, token, err := env.auth.Login(ctx, "budi@shelftrack.test", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "budi@shelftrack.test", user.Email)

	_, _, err = env.auth.Login(ctx, "budi@shelftrack.test", "wrong-password")
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))

	_, _, err = env.auth.Login(ctx, "nobody@shelftrack.test", "secret123")
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))

	require.NoError(t, env.auth.Logout(ctx, token))

	_, err = env.auth.Authenticate(ctx, token)
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, _, err := env.auth.Register(ctx, domain.RegisterInput{
		Name:     "Dewi Lestari",
		Email:    "dewi@shelftrack.test",
		Password: "secret123",
	})
	require.NoError(t, err)

	err = env.auth.ChangePassword(user, "wrong-current", "newsecret1")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	require.NoError(t, env.auth.ChangePassword(user, "secret123", "newsecret1"))

	_, _, err = env.auth.Login(ctx, "dewi@shelftrack.test", "newsecret1")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, _, err := env.auth.Register(ctx, domain.RegisterInput{
		Name:     "Old Name",
		Email:    "profile@shelftrack.test",
		Password: "secret123",
	})
	require.NoError(t, err)

	name := "New Name"
	phone := "+62-812-0000"
	updated, err := env.auth.UpdateProfile(user, domain.UpdateProfileInput{
		Name:        &name,
		PhoneNumber: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	require.NotNil(t, updated.PhoneNumber)
	assert.Equal(t, phone, *updated.PhoneNumber)

	// Email never changes through the profile endpoint.
	assert.Equal(t, "profile@shelftrack.test", updated.Email)
}
