package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeExpirer struct {
	n       int64
	err     error
	grace   time.Duration
	calls   int
	hasDead bool
}

func (f *fakeExpirer) ExpireLapsed(ctx context.Context, grace time.Duration) (int64, error) {
	f.calls++
	f.grace = grace
	_, f.hasDead = ctx.Deadline()
	return f.n, f.err
}

func TestExpireSubscriptions(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc := &fakeExpirer{n: 3}

	ExpireSubscriptions(svc, 72*time.Hour, time.Minute, zap.New(core))()

	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, 72*time.Hour, svc.grace)
	assert.True(t, svc.hasDead)

	entries := logs.FilterMessage("subscription_expiry_done").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ContextMap()["expired"])
}

func TestExpireSubscriptions_Failure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc := &fakeExpirer{err: errors.New("db down")}

	ExpireSubscriptions(svc, time.Hour, time.Minute, zap.New(core))()

	entries := logs.FilterMessage("subscription_expiry_failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestScheduler(t *testing.T) {
	s := New(time.UTC, time.Minute, zap.NewNop())

	assert.Error(t, s.AddSubscriptionExpiry("every tuesday-ish", &fakeExpirer{}, time.Hour))
	require.NoError(t, s.AddSubscriptionExpiry("@hourly", &fakeExpirer{}, time.Hour))
	assert.Len(t, s.cron.Entries(), 1)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
