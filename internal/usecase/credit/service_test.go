package credit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/docsim/internal/domain"
)

// --- Mocks ---

type mockLedger struct {
	used   map[string]int64
	addErr error
	getErr error
}

func newMockLedger() *mockLedger { return &mockLedger{used: map[string]int64{}} }

func (m *mockLedger) Used(_ context.Context, userID, day string) (int64, error) {
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.used[userID+"|"+day], nil
}

func (m *mockLedger) Add(_ context.Context, userID, day string, n int64) (int64, error) {
	if m.addErr != nil {
		return 0, m.addErr
	}
	m.used[userID+"|"+day] += n
	return m.used[userID+"|"+day], nil
}

var (
	user  = domain.Principal{UserID: "alice", Role: domain.RoleUser}
	admin = domain.Principal{UserID: "root", Role: domain.RoleAdmin}
	noon  = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
)

func TestReserve_UntilExhausted(t *testing.T) {
	ledger := newMockLedger()
	svc := New(ledger, 2).WithClock(noon)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Reserve(ctx, user); err != nil {
			t.Fatalf("reserve #%d: %v", i+1, err)
		}
	}
	if _, err := svc.Reserve(ctx, user); !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if got := ledger.used["alice|2026-03-01"]; got != 2 {
		t.Errorf("failed reservation must not consume a credit; used = %d", got)
	}
}

func TestReserve_Release(t *testing.T) {
	ledger := newMockLedger()
	svc := New(ledger, 5).WithClock(noon)

	release, err := svc.Reserve(context.Background(), user)
	if err != nil {
		t.Fatal(err)
	}
	if err := release(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := ledger.used["alice|2026-03-01"]; got != 0 {
		t.Errorf("used after release = %d, want 0", got)
	}
}

func TestReserve_AdminExempt(t *testing.T) {
	ledger := newMockLedger()
	svc := New(ledger, 1).WithClock(noon)
	for i := 0; i < 5; i++ {
		if _, err := svc.Reserve(context.Background(), admin); err != nil {
			t.Fatalf("admin reserve: %v", err)
		}
	}
	if len(ledger.used) != 0 {
		t.Errorf("admin uploads must not touch the ledger: %v", ledger.used)
	}
}

func TestReserve_LedgerError(t *testing.T) {
	ledger := newMockLedger()
	ledger.addErr = errors.New("down")
	if _, err := New(ledger, 1).Reserve(context.Background(), user); err == nil {
		t.Fatal("expected error")
	}
}

func TestBalance(t *testing.T) {
	ledger := newMockLedger()
	ledger.used["alice|2026-03-01"] = 7
	ledger.used["alice|2026-02-28"] = 20
	svc := New(ledger, 0).WithClock(noon)

	b, err := svc.Balance(context.Background(), user)
	if err != nil {
		t.Fatal(err)
	}
	if b.Allowance != DefaultDailyAllowance || b.Used != 7 || b.Remaining != 13 {
		t.Errorf("balance = %+v", b)
	}
	if !b.ResetsAt.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("resets at %v", b.ResetsAt)
	}

	ab, _ := svc.Balance(context.Background(), admin)
	if !ab.Unlimited {
		t.Error("admin balance should be unlimited")
	}
}

func TestBalance_NeverNegative(t *testing.T) {
	ledger := newMockLedger()
	ledger.used["alice|2026-03-01"] = 25
	b, _ := New(ledger, 20).WithClock(noon).Balance(context.Background(), user)
	if b.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", b.Remaining)
	}
}
