package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManual(start)

	assert.Equal(t, start, c.Now())

	c.Advance(time.Microsecond)
	assert.Equal(t, start.Add(time.Microsecond), c.Now())

	c.Sleep(time.Millisecond)
	assert.Equal(t, start.Add(time.Millisecond+time.Microsecond), c.Now())

	select {
	case got := <-c.After(time.Second):
		assert.Equal(t, start.Add(time.Second+time.Millisecond+time.Microsecond), got)
	default:
		require.Fail(t, "After channel was not ready")
	}
}

func TestReal(t *testing.T) {
	var c Clock = Real{}
	before := c.Now()
	c.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, c.Now().Sub(before), time.Millisecond)

	select {
	case <-c.After(time.Millisecond):
	case <-time.After(time.Second):
		require.Fail(t, "After never fired")
	}
}
