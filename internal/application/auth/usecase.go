package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/onboarding-api/internal/application/dto"
	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/domain/repository"
	"github.com/jhoicas/onboarding-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)
	emailCheck = validator.New()
)

// AuthUseCase casos de uso de autenticación y alta de administradores.
type AuthUseCase struct {
	repo   repository.AdminRepository
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(repo repository.AdminRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{repo: repo, jwtCfg: jwtCfg}
}

// Login verifica username/email y password, genera JWT y retorna token + administrador.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	admin, err := uc.repo.FindByLogin(ctx, strings.TrimSpace(in.Login))
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if admin.Status != "active" {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, admin.ID, admin.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, Admin: *toAdminResponse(admin)}, nil
}

// CreateAdmin da de alta un administrador. Solo un superadmin puede hacerlo.
// Devuelve domain.ValidationErrors si los datos no cumplen las reglas y domain.ErrDuplicate
// si username o email ya existen.
func (uc *AuthUseCase) CreateAdmin(ctx context.Context, actorRole string, in dto.CreateAdminRequest) (*dto.AdminResponse, error) {
	if actorRole != entity.RoleSuperAdmin {
		return nil, domain.ErrForbidden
	}
	return uc.create(ctx, in)
}

// Bootstrap crea el primer superadmin. Falla con domain.ErrConflict si ya hay administradores.
func (uc *AuthUseCase) Bootstrap(ctx context.Context, in dto.CreateAdminRequest) (*dto.AdminResponse, error) {
	n, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, domain.ErrConflict
	}
	in.Role = entity.RoleSuperAdmin
	return uc.create(ctx, in)
}

func (uc *AuthUseCase) create(ctx context.Context, in dto.CreateAdminRequest) (*dto.AdminResponse, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = entity.RoleReviewer
	}
	if err := ValidateAdmin(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = in.Username
	}
	admin := &entity.Admin{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         in.Role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrDuplicate
		}
		return nil, err
	}
	return toAdminResponse(admin), nil
}

// ValidateAdmin reglas de alta: username de al menos 3 caracteres [A-Za-z0-9_], password de
// 8 a 72 bytes con mayúscula, minúscula y dígito, email válido y rol conocido.
func ValidateAdmin(in dto.CreateAdminRequest) error {
	errs := domain.ValidationErrors{}
	if !usernameRe.MatchString(in.Username) {
		errs["username"] = "entre 3 y 50 caracteres: letras, dígitos o _"
	}
	if msg := passwordProblem(in.Password); msg != "" {
		errs["password"] = msg
	}
	if err := emailCheck.Var(in.Email, "required,email"); err != nil {
		errs["email"] = "email inválido"
	}
	if in.Role != entity.RoleSuperAdmin && in.Role != entity.RoleReviewer {
		errs["role"] = "rol desconocido: " + in.Role
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// maxPasswordBytes límite de bcrypt; por encima GenerateFromPassword falla.
const maxPasswordBytes = 72

func passwordProblem(p string) string {
	if len(p) < 8 {
		return "debe tener al menos 8 caracteres"
	}
	if len(p) > maxPasswordBytes {
		return "debe tener como máximo 72 bytes"
	}
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return "debe incluir mayúscula, minúscula y dígito"
	}
	return ""
}

func toAdminResponse(a *entity.Admin) *dto.AdminResponse {
	if a == nil {
		return nil
	}
	return &dto.AdminResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Name:      a.Name,
		Role:      a.Role,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}
