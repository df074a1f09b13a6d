// Package access implements the authorization core: authenticating a
// principal from a bearer token and the role, ownership and cross-reference
// checks every resource operation composes.
package access

import (
	"context"

	"clinic-practice-server/internal/models"
)

// Principal is the authenticated caller for the current request. It is
// rebuilt on every request from verified claims plus a live identity-store
// lookup, never from cached data.
type Principal struct {
	ID       string
	Email    string
	FullName string
	Role     models.Role
}

// UserSource is the identity-store surface the access layer needs.
type UserSource interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticate verifies the token and re-resolves its subject against the
// identity store. A valid token whose user no longer exists is rejected, so
// deleted users lose access immediately.
func Authenticate(ctx context.Context, tokenString string, secret string, users UserSource) (*Principal, error) {
	claims, err := ParseToken(tokenString, secret)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, Unauthenticated("invalid authentication credentials")
	}

	user, err := users.UserByEmail(ctx, claims.Subject)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, Unauthenticated("user not found")
		}
		return nil, err
	}

	return &Principal{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}, nil
}

// RequireRole gates an operation class to a single role.
func RequireRole(p *Principal, role models.Role) error {
	if p.Role != role {
		return Forbidden("access forbidden: requires role %q", role)
	}
	return nil
}

// RequireOwnership checks that the resource's stored owner reference is the
// principal. Correct role with the wrong identity is still Forbidden.
func RequireOwnership(ownerID string, p *Principal) error {
	if ownerID != p.ID {
		return Forbidden("access denied: you can only modify resources you own")
	}
	return nil
}

// RequireCrossRoleTarget resolves a referenced user and checks its role
// matches what the operation expects. A missing user is NotFound; an
// existing user with the wrong role is InvalidTarget.
func RequireCrossRoleTarget(ctx context.Context, users UserSource, targetID string, want models.Role) (*models.User, error) {
	user, err := users.UserByID(ctx, targetID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, NotFound("user %s not found", targetID)
		}
		return nil, err
	}
	if user.Role != want {
		return nil, InvalidTarget("target user is not a %s", want)
	}
	return user, nil
}
