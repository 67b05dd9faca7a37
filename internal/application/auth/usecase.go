package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pumpkinbots/partbot/internal/application/dto"
	"github.com/pumpkinbots/partbot/internal/domain"
	"github.com/pumpkinbots/partbot/internal/domain/entity"
	"github.com/pumpkinbots/partbot/internal/domain/repository"
	"github.com/pumpkinbots/partbot/pkg/jwt"
)

// MinPasswordLength longitud mínima de contraseña.
const MinPasswordLength = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: alta de cuentas, login y tokens de servicio.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// RegisterUser crea una cuenta: valida el rol, hashea el password con bcrypt y persiste.
// Devuelve domain.ErrConflict si el username ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.NewValidationError("username", "es requerido")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, domain.NewValidationError("password", "debe tener al menos 8 caracteres")
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = entity.RoleStudent
	}
	if !validRole(role) {
		return nil, domain.NewValidationError("role", "rol inválido").WithDetail("value", in.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{Username: username, PasswordHash: string(hash), Role: role, Active: true}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica username/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.FindByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.Username, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

// IssueToken genera un token para una identidad de servicio (p. ej. el bot) sin contraseña.
// Solo lo usa la CLI de administración.
func (uc *AuthUseCase) IssueToken(subject, role string, expMinutes int) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !validRole(role) {
		return "", domain.NewValidationError("role", "rol inválido").WithDetail("value", role)
	}
	if expMinutes <= 0 {
		expMinutes = uc.jwtCfg.ExpMinutes
	}
	return jwt.Generate(uc.jwtCfg.Secret, subject, role, uc.jwtCfg.Issuer, expMinutes)
}

func validRole(role string) bool {
	switch role {
	case entity.RoleMentor, entity.RoleStudent, entity.RoleBot:
		return true
	}
	return false
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{Username: u.Username, Role: u.Role, Active: u.Active}
}
