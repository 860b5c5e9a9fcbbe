package cache

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaoDuyThanh/drtrace/internal/core"
	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func newL2ForTest(t *testing.T) *L2 {
	t.Helper()
	mr := miniredis.RunT(t)
	l2, err := NewL2(mr.Addr(), "", 0, time.Minute, testLogger())
	require.NoError(t, err)
	return l2
}

func TestKey_IsStableRegardlessOfFieldOrder(t *testing.T) {
	level := core.LevelWarn
	a := core.QueryFilter{ApplicationID: "app-1", StartTS: 1, EndTS: 2, MinLevel: &level, Limit: 10}
	b := core.QueryFilter{Limit: 10, MinLevel: &level, EndTS: 2, StartTS: 1, ApplicationID: "app-1"}
	assert.Equal(t, Key(a), Key(b))
}

func TestKey_DiffersOnLimit(t *testing.T) {
	a := core.QueryFilter{ApplicationID: "app-1", StartTS: 1, EndTS: 2, Limit: 10}
	b := core.QueryFilter{ApplicationID: "app-1", StartTS: 1, EndTS: 2, Limit: 0}
	assert.NotEqual(t, Key(a), Key(b))
}

func TestManager_L1OnlyMissThenHit(t *testing.T) {
	mgr := NewManager(NewL1(10, time.Minute), nil, testLogger(), metrics.New("drtrace_test_cache_l1only"))

	_, ok := mgr.Get(context.Background(), "k")
	assert.False(t, ok)

	records := []core.StoredRecord{{ID: 1, LogRecord: core.LogRecord{Message: "hi"}}}
	mgr.Set(context.Background(), "k", records)

	got, ok := mgr.Get(context.Background(), "k")
	require.True(t, ok)
	assert.Equal(t, records, got)
}

func TestManager_L2HitPromotesToL1(t *testing.T) {
	l2 := newL2ForTest(t)
	mgr := NewManager(NewL1(10, time.Minute), l2, testLogger(), metrics.New("drtrace_test_cache_l2promote"))

	records := []core.StoredRecord{{ID: 1, LogRecord: core.LogRecord{Message: "from-l2"}}}
	require.NoError(t, l2.Set(context.Background(), "k", records))

	got, ok := mgr.Get(context.Background(), "k")
	require.True(t, ok)
	assert.Equal(t, records, got)

	l1Got, l1OK := mgr.l1.Get("k")
	require.True(t, l1OK)
	assert.Equal(t, records, l1Got)
}

func TestManager_InvalidateAll_ClearsBothTiers(t *testing.T) {
	l2 := newL2ForTest(t)
	mgr := NewManager(NewL1(10, time.Minute), l2, testLogger(), metrics.New("drtrace_test_cache_invalidate"))

	records := []core.StoredRecord{{ID: 1, LogRecord: core.LogRecord{Message: "hi"}}}
	mgr.Set(context.Background(), "k", records)

	mgr.InvalidateAll(context.Background())

	_, ok := mgr.Get(context.Background(), "k")
	assert.False(t, ok)
}
