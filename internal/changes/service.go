// Package changes drives the review workflow for governed mutations:
// pending-queue retrieval, memoized detail loading and verdict
// submission. A change request is PENDING until exactly one verdict
// moves it to APPROVED or DECLINED; both are terminal and the client
// never predicts a transition before the backend confirms it.
package changes

import (
	"context"
	"fmt"

	"catalogadmin/internal/alerts"
	"catalogadmin/internal/gateway"
	"catalogadmin/internal/models"
)

// DetailCache memoizes fetched change details. Each call site owns its
// cache; entries are never evicted by this package.
type DetailCache map[int]models.ChangeDetail

// Transform optionally reshapes a fetched detail before it is cached,
// e.g. to pre-format diff values for rendering.
type Transform func(models.ChangeDetail) models.ChangeDetail

type Service struct {
	gw     *gateway.Client
	alerts *alerts.Store
}

func NewService(gw *gateway.Client, al *alerts.Store) *Service {
	return &Service{gw: gw, alerts: al}
}

// ListPending returns every change request awaiting review, across all
// object types.
func (s *Service) ListPending(ctx context.Context) ([]models.ChangeRequest, error) {
	return s.gw.PendingChanges(ctx)
}

// ListForObject returns the changes scoped to one schema or, when
// entityIDOrSlug is non-empty, one entity of that schema.
func (s *Service) ListForObject(ctx context.Context, objectType models.ObjectType, schemaSlug, entityIDOrSlug string) ([]models.ChangeRequest, error) {
	switch objectType {
	case models.ObjectEntity:
		if entityIDOrSlug == "" {
			return nil, fmt.Errorf("entity changes need an entity id or slug")
		}
		return s.gw.EntityChanges(ctx, schemaSlug, entityIDOrSlug)
	case models.ObjectSchema:
		return s.gw.SchemaChanges(ctx, schemaSlug)
	default:
		return nil, fmt.Errorf("unknown object type %q", objectType)
	}
}

// LoadDetail populates cache[changeID] if absent. A present key
// short-circuits without any network access, so sequential repeat
// calls fetch once. Concurrent first calls for the same id may both
// fetch; last write wins, which is harmless because the detail is
// immutable server-side once created.
func (s *Service) LoadDetail(ctx context.Context, cache DetailCache, objectType models.ObjectType, changeID int, transform Transform) error {
	if _, ok := cache[changeID]; ok {
		return nil
	}
	detail, err := s.gw.ChangeDetail(ctx, objectType, changeID)
	if err != nil {
		return err
	}
	if transform != nil {
		detail = transform(detail)
	}
	cache[changeID] = detail
	return nil
}

// SubmitVerdict applies the terminal review decision. Callers must not
// resubmit for a change that already reached APPROVED or DECLINED;
// that invariant lives with the caller, not here. A gateway failure is
// already alerted by the gateway; this layer adds nothing to it.
func (s *Service) SubmitVerdict(ctx context.Context, changeID int, result models.ReviewResult, comment *string) (models.ChangeRequest, error) {
	out, err := s.gw.SubmitReview(ctx, changeID, result, comment)
	if err != nil {
		return models.ChangeRequest{}, err
	}
	s.alerts.Success(fmt.Sprintf("Review for change request %d submitted", changeID))
	return out, nil
}
