package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaoDuyThanh/drtrace/internal/core"
)

func TestL1_SetGet(t *testing.T) {
	l1 := NewL1(10, time.Minute)
	records := []core.StoredRecord{{ID: 1, LogRecord: core.LogRecord{Message: "hi"}}}
	l1.Set("k", records)

	got, ok := l1.Get("k")
	require.True(t, ok)
	assert.Equal(t, records, got)
}

func TestL1_ExpiresAfterTTL(t *testing.T) {
	l1 := NewL1(10, time.Millisecond)
	l1.Set("k", []core.StoredRecord{{ID: 1}})
	time.Sleep(5 * time.Millisecond)

	_, ok := l1.Get("k")
	assert.False(t, ok)
}

func TestL1_Purge(t *testing.T) {
	l1 := NewL1(10, time.Minute)
	l1.Set("k", []core.StoredRecord{{ID: 1}})
	l1.Purge()

	_, ok := l1.Get("k")
	assert.False(t, ok)
}
