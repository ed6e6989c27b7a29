// Package evloop is the bare-bones in-process event loop spec.md §5
// describes: a single-threaded callback queue driven by the
// primitives that can suspend (`sleep`, `accept`) plus an explicit
// Tick the host calls between top-level evaluations. It has no
// epoll/kqueue backend; read/write readiness is polled with
// golang.org/x/sys/unix.Poll, which is honest about what a
// select-free, non-reentrant core can promise without a real reactor.
package evloop

import (
	"time"

	"golang.org/x/sys/unix"
)

// Kind is the watcher family spec.md §6's `ev-start` accepts.
type Kind int

const (
	Read Kind = iota
	Write
	Timer
	Signal
)

// Watcher is one registered callback, identified by a host-visible
// integer id (spec.md §6: "return id").
type Watcher struct {
	ID       int
	Kind     Kind
	FD       int         // Read, Write
	Deadline time.Time   // Timer
	SignalCh <-chan int  // Signal (delivered value ignored beyond "fired")
	Callback int         // opaque payload (a persistentID from the root registry)
	active   bool
}

// Loop holds every live watcher. It is not safe for concurrent use —
// the core itself is single-threaded and cooperative (spec.md §5).
type Loop struct {
	watchers map[int]*Watcher
	nextID   int
}

func New() *Loop {
	return &Loop{watchers: make(map[int]*Watcher)}
}

// StartTimer registers a one-shot timer watcher firing after d.
func (l *Loop) StartTimer(d time.Duration, callback int) int {
	id := l.nextID
	l.nextID++
	l.watchers[id] = &Watcher{ID: id, Kind: Timer, Deadline: time.Now().Add(d), Callback: callback, active: true}
	return id
}

// StartIO registers a read or write readiness watcher on fd.
func (l *Loop) StartIO(kind Kind, fd, callback int) int {
	id := l.nextID
	l.nextID++
	l.watchers[id] = &Watcher{ID: id, Kind: kind, FD: fd, Callback: callback, active: true}
	return id
}

// StartSignal registers a watcher that fires once a value arrives on
// ch (the host primitive feeds an os/signal.Notify channel in here).
func (l *Loop) StartSignal(ch <-chan int, callback int) int {
	id := l.nextID
	l.nextID++
	l.watchers[id] = &Watcher{ID: id, Kind: Signal, SignalCh: ch, Callback: callback, active: true}
	return id
}

// Stop removes a watcher. It reports whether id was known (spec.md
// §6: "True on success, Nil if unknown"). The watcher is deleted from
// the live map that Tick iterates, so no later Tick reports it; a Ready
// already returned by an earlier Tick is not withdrawn.
func (l *Loop) Stop(id int) bool {
	w, ok := l.watchers[id]
	if !ok {
		return false
	}
	w.active = false
	delete(l.watchers, id)
	return true
}

// Ready is one watcher whose condition has fired, returned from Tick
// for the host to dispatch (invoking its callback requires the
// evaluator, which this package does not depend on). Callbacks always
// fire with zero Lisp arguments; `arg` in ev-start's contract names
// the type-specific registration parameter (fd, delay, signal number),
// not a value passed back to the callback.
type Ready struct {
	Callback int
	OneShot  bool // true for Timer/Signal: the watcher is already gone
}

// Tick polls every registered watcher once without blocking and
// returns the ones ready to fire, removing one-shot timer and signal
// watchers (read/write watchers stay armed until explicitly stopped).
func (l *Loop) Tick() []Ready {
	var ready []Ready
	var pollFDs []unix.PollFd
	var pollWatchers []*Watcher

	now := time.Now()
	for _, w := range l.watchers {
		if !w.active {
			continue
		}
		switch w.Kind {
		case Timer:
			if !now.Before(w.Deadline) {
				ready = append(ready, Ready{Callback: w.Callback, OneShot: true})
				delete(l.watchers, w.ID)
			}
		case Signal:
			select {
			case <-w.SignalCh:
				ready = append(ready, Ready{Callback: w.Callback, OneShot: true})
				delete(l.watchers, w.ID)
			default:
			}
		case Read, Write:
			events := int16(unix.POLLIN)
			if w.Kind == Write {
				events = unix.POLLOUT
			}
			pollFDs = append(pollFDs, unix.PollFd{Fd: int32(w.FD), Events: events})
			pollWatchers = append(pollWatchers, w)
		}
	}

	if len(pollFDs) > 0 {
		if n, err := unix.Poll(pollFDs, 0); err == nil && n > 0 {
			for i, pfd := range pollFDs {
				if pfd.Revents != 0 {
					ready = append(ready, Ready{Callback: pollWatchers[i].Callback})
				}
			}
		}
	}
	return ready
}

// Empty reports whether no watchers remain armed.
func (l *Loop) Empty() bool { return len(l.watchers) == 0 }
