package evloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoop_TimerFiresOnceAfterDeadline(t *testing.T) {
	l := New()
	id := l.StartTimer(0, 42)
	assert.False(t, l.Empty())

	ready := l.Tick()
	assert.Equal(t, []Ready{{Callback: 42, OneShot: true}}, ready)
	assert.True(t, l.Empty())

	// Tick already removed the watcher, so Stop on its id reports false.
	assert.False(t, l.Stop(id))
}

func TestLoop_TimerNotYetDueProducesNothing(t *testing.T) {
	l := New()
	l.StartTimer(time.Hour, 1)
	assert.Empty(t, l.Tick())
	assert.False(t, l.Empty())
}

func TestLoop_SignalFiresOnceValueArrives(t *testing.T) {
	l := New()
	ch := make(chan int, 1)
	l.StartSignal(ch, 7)

	assert.Empty(t, l.Tick())

	ch <- 1
	ready := l.Tick()
	assert.Equal(t, []Ready{{Callback: 7, OneShot: true}}, ready)
	assert.True(t, l.Empty())
}

func TestLoop_StopRemovesWatcher(t *testing.T) {
	l := New()
	id := l.StartTimer(time.Hour, 1)
	assert.True(t, l.Stop(id))
	assert.True(t, l.Empty())
	assert.False(t, l.Stop(id))
}

func TestLoop_StopUnknownIDReportsFalse(t *testing.T) {
	l := New()
	assert.False(t, l.Stop(999))
}

func TestLoop_IOWatcherStaysArmedAfterTick(t *testing.T) {
	l := New()
	// fd -1 never becomes poll-ready; the watcher should simply stay
	// registered rather than being dropped the way Timer/Signal are.
	l.StartIO(Read, -1, 3)
	assert.Empty(t, l.Tick())
	assert.False(t, l.Empty())
}

func TestLoop_EmptyOnFreshLoop(t *testing.T) {
	l := New()
	assert.True(t, l.Empty())
}
