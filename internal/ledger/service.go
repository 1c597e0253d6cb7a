package ledger

import (
	"context"
	"time"

	"github.com/chessman8212-ai/poinatge-app/internal/policy"
)

// ClockInput is a clock-in request before validation.
type ClockInput struct {
	Day       string
	Arrival   string
	Departure string
	Category  string
	Note      string
}

// Service validates and records pointages.
type Service struct {
	store        Store
	rejectFuture bool
	now          func() time.Time
}

// NewService creates a service backed by a store. rejectFuture controls
// whether clock-ins dated after today are refused.
func NewService(store Store, rejectFuture bool) *Service {
	return &Service{store: store, rejectFuture: rejectFuture, now: time.Now}
}

// Clock validates the input and inserts a record owned by the acting
// principal. The owner is always the principal's username, never
// client-supplied. Day defaults to today; backdating is accepted.
func (s *Service) Clock(ctx context.Context, p *policy.Principal, in ClockInput) (*Record, error) {
	if in.Arrival == "" {
		return nil, &ValidationError{Field: "arrivee", Reason: "required"}
	}
	arrival, err := NormalizeClock(in.Arrival)
	if err != nil {
		return nil, &ValidationError{Field: "arrivee", Reason: err.Error()}
	}

	var departure string
	if in.Departure != "" {
		departure, err = NormalizeClock(in.Departure)
		if err != nil {
			return nil, &ValidationError{Field: "depart", Reason: err.Error()}
		}
	}

	if in.Category != "" && !ValidCategory(in.Category) {
		return nil, &ValidationError{Field: "service", Reason: "unknown category"}
	}

	day := s.today()
	if in.Day != "" {
		day, err = NormalizeDay(in.Day)
		if err != nil {
			return nil, &ValidationError{Field: "jour", Reason: err.Error()}
		}
		if s.rejectFuture && day > s.today() {
			return nil, &ValidationError{Field: "jour", Reason: "future dates not accepted"}
		}
	}

	rec := &Record{
		Owner:     p.Username,
		Day:       day,
		Arrival:   arrival,
		Departure: departure,
		Category:  in.Category,
		Note:      in.Note,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListDay returns the day's records visible to the principal: everything
// for admins, own rows only otherwise. Day defaults to today.
func (s *Service) ListDay(ctx context.Context, p *policy.Principal, day string) ([]Record, error) {
	if day == "" {
		day = s.today()
	} else {
		var err error
		day, err = NormalizeDay(day)
		if err != nil {
			return nil, &ValidationError{Field: "jour", Reason: err.Error()}
		}
	}
	return s.store.ListDay(ctx, day, policy.OwnerFilter(p))
}

// ListDayAll returns all records for a day without principal scoping. Used
// by the export path, which is admin- or token-gated upstream.
func (s *Service) ListDayAll(ctx context.Context, day string) ([]Record, error) {
	return s.store.ListDay(ctx, day, "")
}

// ListAll returns every record for the admin overview.
func (s *Service) ListAll(ctx context.Context) ([]Record, error) {
	return s.store.ListAll(ctx)
}

// DailyStats returns per-day record counts for the admin overview.
func (s *Service) DailyStats(ctx context.Context) ([]DayStat, error) {
	return s.store.DailyStats(ctx)
}

// Delete permanently removes a record. Admin gating happens at the policy
// layer before this is called.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}
