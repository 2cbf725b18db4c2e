package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type fakeExecutor struct {
	calls []string
	err   error
}

func (f *fakeExecutor) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, sql)
	return pgconn.CommandTag{}, f.err
}

func TestRunOnce_RefreshFailureSkipsPublish(t *testing.T) {
	db := &fakeExecutor{err: errors.New("pg down")}
	r := NewRevenueRefresher(zap.NewNop(), nil, db, nil, time.Hour)

	// A failed refresh must return before touching the publisher; a nil
	// publisher would otherwise panic here.
	r.runOnce(context.Background())

	if len(db.calls) != 1 {
		t.Fatalf("expected 1 exec call, got %d", len(db.calls))
	}
}

func TestRunOnce_ExecutesRefreshFunction(t *testing.T) {
	db := &fakeExecutor{err: errors.New("stop before publish")}
	r := NewRevenueRefresher(zap.NewNop(), nil, db, nil, time.Hour)

	r.runOnce(context.Background())

	if db.calls[0] != `SELECT ledger.fn_refresh_fee_revenue_summary()` {
		t.Errorf("unexpected sql: %s", db.calls[0])
	}
}

func TestStartStop(t *testing.T) {
	db := &fakeExecutor{}
	r := NewRevenueRefresher(zap.NewNop(), nil, db, nil, time.Hour)

	done := make(chan struct{})
	go func() {
		r.Start(context.Background())
		close(done)
	}()

	r.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}
