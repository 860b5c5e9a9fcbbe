package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedBuffer_AddAndLen(t *testing.T) {
	b := newBoundedBuffer(0)
	for i := 0; i < 5; i++ {
		dropped := b.Add(LogRecord{Message: "m"})
		assert.False(t, dropped)
	}
	assert.Equal(t, 5, b.Len())
}

func TestBoundedBuffer_DropOldestAtCapacity(t *testing.T) {
	b := newBoundedBuffer(3)
	b.Add(LogRecord{Message: "1"})
	b.Add(LogRecord{Message: "2"})
	b.Add(LogRecord{Message: "3"})
	dropped := b.Add(LogRecord{Message: "4"})

	assert.True(t, dropped)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, int64(1), b.Dropped())

	records := b.Drain()
	assert.Equal(t, []string{"2", "3", "4"}, messages(records))
}

func TestBoundedBuffer_Drain_EmptiesAndIsAtomic(t *testing.T) {
	b := newBoundedBuffer(10)
	b.Add(LogRecord{Message: "a"})
	b.Add(LogRecord{Message: "b"})

	drained := b.Drain()
	assert.Len(t, drained, 2)
	assert.Equal(t, 0, b.Len())

	assert.Nil(t, b.Drain())
}

func messages(records []LogRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Message
	}
	return out
}
