// Package perms is the client-side facade over the backend permission
// registry. Grants and revocations are immutable operations; the
// interesting contract is separating "the backend declined" (a valid
// false result, reported as a warning) from "the request failed" (the
// gateway already raised the alert).
package perms

import (
	"context"

	"catalogadmin/internal/alerts"
	"catalogadmin/internal/gateway"
	"catalogadmin/internal/models"
)

type Service struct {
	gw     *gateway.Client
	alerts *alerts.Store
}

func NewService(gw *gateway.Client, al *alerts.Store) *Service {
	return &Service{gw: gw, alerts: al}
}

// Query lists grants matching the filter; omitted fields are
// unconstrained.
func (s *Service) Query(ctx context.Context, filter gateway.PermissionFilter) ([]models.Permission, error) {
	return s.gw.Permissions(ctx, filter)
}

// Grant creates a permission grant. A false result from the backend
// (duplicate grant, for example) is not an error: it produces a
// warning, while a gateway failure produces nothing here because the
// gateway already informed the user.
func (s *Service) Grant(ctx context.Context, grant gateway.PermissionGrant) (bool, error) {
	ok, err := s.gw.GrantPermission(ctx, grant)
	if err != nil {
		return false, err
	}
	if !ok {
		s.alerts.Warning("Granting of permission not possible")
		return false, nil
	}
	s.alerts.Success("Permission granted to " + grant.RecipientName)
	return true, nil
}

// Revoke deletes grants by id, bulk. Same notification pattern as
// Grant: false means no matching grants.
func (s *Service) Revoke(ctx context.Context, permissionIDs []int) (bool, error) {
	ok, err := s.gw.RevokePermissions(ctx, permissionIDs)
	if err != nil {
		return false, err
	}
	if !ok {
		s.alerts.Warning("Revocation of permissions not possible")
		return false, nil
	}
	s.alerts.Success("Permissions revoked")
	return true, nil
}
