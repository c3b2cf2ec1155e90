// Package credit enforces the daily upload allowance.
package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/docsim/internal/domain"
)

// DefaultDailyAllowance is the number of uploads a user may make per UTC day.
const DefaultDailyAllowance = 20

const dayLayout = "2006-01-02"

// Balance is a user's allowance for the current day.
type Balance struct {
	Allowance int64
	Used      int64
	Remaining int64
	Unlimited bool
	ResetsAt  time.Time
}

// Service reserves and reports credits.
type Service struct {
	ledger    Ledger
	allowance int64
	now       func() time.Time
}

// New creates a credit service. allowance <= 0 selects DefaultDailyAllowance.
func New(ledger Ledger, allowance int64) *Service {
	if allowance <= 0 {
		allowance = DefaultDailyAllowance
	}
	return &Service{ledger: ledger, allowance: allowance, now: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Balance reports the principal's allowance for today. Admins are unlimited.
func (s *Service) Balance(ctx context.Context, p domain.Principal) (Balance, error) {
	day, resets := s.today()
	if p.IsAdmin() {
		return Balance{Unlimited: true, ResetsAt: resets}, nil
	}
	used, err := s.ledger.Used(ctx, p.UserID, day)
	if err != nil {
		return Balance{}, fmt.Errorf("read credits: %w", err)
	}
	return Balance{
		Allowance: s.allowance,
		Used:      used,
		Remaining: max(0, s.allowance-used),
		ResetsAt:  resets,
	}, nil
}

// Reserve takes one credit for p or fails with ErrInsufficientCredits.
// The returned release gives the credit back; call it when the upload
// does not complete. Admins reserve nothing.
func (s *Service) Reserve(ctx context.Context, p domain.Principal) (release func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if p.IsAdmin() {
		return noop, nil
	}

	day, _ := s.today()
	total, err := s.ledger.Add(ctx, p.UserID, day, 1)
	if err != nil {
		return nil, fmt.Errorf("reserve credit: %w", err)
	}
	release = func(ctx context.Context) error {
		if _, err := s.ledger.Add(ctx, p.UserID, day, -1); err != nil {
			return fmt.Errorf("release credit: %w", err)
		}
		return nil
	}
	if total > s.allowance {
		if err := release(ctx); err != nil {
			return nil, err
		}
		return nil, domain.ErrInsufficientCredits
	}
	return release, nil
}

func (s *Service) today() (day string, resetsAt time.Time) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start.Format(dayLayout), start.Add(24 * time.Hour)
}
