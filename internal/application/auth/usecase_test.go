package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumpkinbots/partbot/internal/application/auth"
	"github.com/pumpkinbots/partbot/internal/application/dto"
	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/infrastructure/memory"
	"github.com/pumpkinbots/partbot/internal/infrastructure/tables"
	"github.com/pumpkinbots/partbot/pkg/jwt"
)

const secret = "test-secret"

func newUseCase(t *testing.T) (*auth.AuthUseCase, *tables.UserRepository) {
	t.Helper()
	store := memory.NewTableStore()
	require.NoError(t, tables.Provision(context.Background(), store))
	repo := tables.NewUserRepository(store)
	return auth.NewAuthUseCase(repo, auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "partbot-test"}), repo
}

func TestRegisterYLogin(t *testing.T) {
	uc, repo := newUseCase(t)
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "coach", Password: "pumpkin-pie", Role: "Mentor"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleMentor, user.Role)

	stored, err := repo.FindByUsername(ctx, "coach")
	require.NoError(t, err)
	assert.NotEqual(t, "pumpkin-pie", stored.PasswordHash)

	out, err := uc.Login(ctx, dto.LoginRequest{Username: "coach", Password: "pumpkin-pie"})
	require.NoError(t, err)
	username, role, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "coach", username)
	assert.Equal(t, entity.RoleMentor, role)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "coach", Password: "wrong-pass"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "pumpkin-pie"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Username: "coach", Password: "pumpkin-pie"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRegister_Validacion(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "x", Password: "corta"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Username: "x", Password: "suficiente", Role: "admin"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestIssueToken(t *testing.T) {
	uc, _ := newUseCase(t)
	tok, err := uc.IssueToken("discord-bot", "bot", 0)
	require.NoError(t, err)
	_, role, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBot, role)

	_, err = uc.IssueToken("x", "root", 10)
	assert.Error(t, err)
}
