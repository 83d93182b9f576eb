package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/reseller-ops-api/internal/domains/audit/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/audit/ports"
	"github.com/Apurer/reseller-ops-api/internal/shared/actor"
)

// Service appends and lists audit entries.
type Service struct {
	repo  ports.Repository
	now   func() time.Time
	newID func() string
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo, now: time.Now, newID: uuid.NewString}
}

// WithClock overrides the time source for deterministic testing.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Record appends one entry attributed to the actor on the context. The append is synchronous;
// callers treat a returned error as a failed mutation.
func (s *Service) Record(ctx context.Context, input ports.RecordInput) (*domain.Entry, error) {
	who := actor.FromContext(ctx)
	entry, err := domain.NewEntry(s.newID(), s.now(), who.ID, input.Action, input.Target, input.Detail, who.Address)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, input ports.ListInput) ([]*domain.Entry, error) {
	filter := ports.Filter{Search: strings.TrimSpace(input.Search)}
	if raw := strings.TrimSpace(input.Action); raw != "" && !strings.EqualFold(raw, "all") {
		action, err := domain.ParseAction(raw)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Action = action
	}
	return s.repo.List(ctx, filter)
}

var _ ports.Service = (*Service)(nil)
