package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTriggerFiresAfterQuietPeriod(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Close()

	var fired atomic.Int32
	d.Trigger("k", func() { fired.Add(1) })

	assert.True(t, d.Pending("k"))
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, d.Pending("k"))
}

func TestRetriggerResetsTimer(t *testing.T) {
	d := New(50 * time.Millisecond)
	defer d.Close()

	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger("k", func() { fired.Add(1) })
		time.Sleep(10 * time.Millisecond)
	}

	// Burst coalesces into a single firing
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestKeysAreIndependent(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Close()

	var a, b atomic.Int32
	d.Trigger("a", func() { a.Add(1) })
	d.Trigger("b", func() { b.Add(1) })

	assert.Eventually(t, func() bool {
		return a.Load() == 1 && b.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCancelDropsPendingAction(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Close()

	var fired atomic.Int32
	d.Trigger("k", func() { fired.Add(1) })
	d.Cancel("k")

	assert.False(t, d.Pending("k"))
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestCloseRejectsFurtherTriggers(t *testing.T) {
	d := New(10 * time.Millisecond)

	var fired atomic.Int32
	d.Trigger("k", func() { fired.Add(1) })
	d.Close()

	d.Trigger("k2", func() { fired.Add(1) })
	assert.False(t, d.Pending("k2"))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
