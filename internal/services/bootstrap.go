package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/tiryaq/internal/models"
	"github.com/example/tiryaq/internal/store"
	"github.com/example/tiryaq/internal/utils"
)

// EnsureAdmin creates the administrator account unless one with the same
// email already exists. It reports whether an account was created.
func EnsureAdmin(ctx context.Context, st store.Store, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, errors.New("admin email and password are required")
	}

	existing, err := st.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			return false, fmt.Errorf("account %s exists with role %s", email, existing.Role)
		}
		return false, nil
	case !errors.Is(err, store.ErrNotFound):
		return false, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, err
	}

	admin := &models.User{
		Name:         name,
		Email:        &email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsApproved:   true,
	}
	if err := st.CreateUser(ctx, admin, nil); err != nil {
		return false, err
	}
	return true, nil
}
