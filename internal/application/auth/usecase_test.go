package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/onboarding-api/internal/application/auth"
	"github.com/jhoicas/onboarding-api/internal/application/dto"
	"github.com/jhoicas/onboarding-api/internal/domain"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/onboarding-api/pkg/jwt"
)

const secret = "test-secret"

func newAuth() *auth.AuthUseCase {
	return auth.NewAuthUseCase(memory.NewAdminRepository(), auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"})
}

func root() dto.CreateAdminRequest {
	return dto.CreateAdminRequest{Username: "root_admin", Email: "Root@Corp.in", Password: "Sup3rSecret"}
}

func TestBootstrap_SoloLaPrimeraVez(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()

	a, err := uc.Bootstrap(ctx, root())
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSuperAdmin, a.Role)
	assert.Equal(t, "root@corp.in", a.Email)

	_, err = uc.Bootstrap(ctx, dto.CreateAdminRequest{Username: "other", Email: "o@corp.in", Password: "Sup3rSecret"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestLogin_PorUsernameOEmail(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	created, err := uc.Bootstrap(ctx, root())
	require.NoError(t, err)

	for _, login := range []string{"root_admin", "root@corp.in"} {
		out, err := uc.Login(ctx, dto.LoginRequest{Login: login, Password: "Sup3rSecret"})
		require.NoError(t, err, login)
		adminID, role, err := pkgjwt.Parse(secret, out.Token)
		require.NoError(t, err)
		assert.Equal(t, created.ID, adminID)
		assert.Equal(t, entity.RoleSuperAdmin, role)
	}

	_, err = uc.Login(ctx, dto.LoginRequest{Login: "root_admin", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Login: "nobody", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreateAdmin_SoloSuperadmin(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	in := dto.CreateAdminRequest{Username: "rev_1", Email: "rev@corp.in", Password: "Revi3wer!"}

	_, err := uc.CreateAdmin(ctx, entity.RoleReviewer, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	a, err := uc.CreateAdmin(ctx, entity.RoleSuperAdmin, in)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleReviewer, a.Role, "rol por defecto")
	assert.Equal(t, "rev_1", a.Name)

	_, err = uc.CreateAdmin(ctx, entity.RoleSuperAdmin, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestValidateAdmin(t *testing.T) {
	cases := []struct {
		name  string
		in    dto.CreateAdminRequest
		field string
	}{
		{"username corto", dto.CreateAdminRequest{Username: "ab", Email: "a@b.in", Password: "Abcdefg1", Role: "reviewer"}, "username"},
		{"username con guion", dto.CreateAdminRequest{Username: "ana-m", Email: "a@b.in", Password: "Abcdefg1", Role: "reviewer"}, "username"},
		{"password corta", dto.CreateAdminRequest{Username: "ana", Email: "a@b.in", Password: "Ab1", Role: "reviewer"}, "password"},
		{"password sin dígito", dto.CreateAdminRequest{Username: "ana", Email: "a@b.in", Password: "Abcdefgh", Role: "reviewer"}, "password"},
		{"password sin mayúscula", dto.CreateAdminRequest{Username: "ana", Email: "a@b.in", Password: "abcdefg1", Role: "reviewer"}, "password"},
		{"password de más de 72 bytes", dto.CreateAdminRequest{Username: "ana", Email: "a@b.in", Password: "Aa1" + strings.Repeat("x", 80), Role: "reviewer"}, "password"},
		{"email", dto.CreateAdminRequest{Username: "ana", Email: "ana.corp.in", Password: "Abcdefg1", Role: "reviewer"}, "email"},
		{"rol", dto.CreateAdminRequest{Username: "ana", Email: "a@b.in", Password: "Abcdefg1", Role: "owner"}, "role"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := auth.ValidateAdmin(tc.in)
			var verr domain.ValidationErrors
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr, tc.field)
			assert.Len(t, verr, 1)
		})
	}

	assert.NoError(t, auth.ValidateAdmin(dto.CreateAdminRequest{Username: "ana_m", Email: "a@b.in", Password: "Abcdefg1", Role: "superadmin"}))
}

func TestBootstrap_PasswordLargaEsErrorDeCampo(t *testing.T) {
	uc := newAuth()
	in := root()
	in.Password = "Aa1" + strings.Repeat("x", 80)

	_, err := uc.Bootstrap(context.Background(), in)
	var verr domain.ValidationErrors
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Contains(t, verr, "password")

	in.Password = "Aa1" + strings.Repeat("x", 69)
	_, err = uc.Bootstrap(context.Background(), in)
	assert.NoError(t, err, "72 bytes exactos se aceptan")
}
