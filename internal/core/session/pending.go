package session

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

type workID uint64

type work struct {
	id       workID
	scope    uint64
	timer    clockwork.Timer
	deadline time.Time
	anchor   time.Time
	period   time.Duration
	fires    int
	fn       func()
}

// PendingWork is the set of live timers owned by a Scheduler. Every item
// is tagged with the phase-entry scope it was armed for, and the whole set
// can be cancelled as a unit.
//
// PendingWork is not safe for concurrent use; the Scheduler serialises
// access with its own mutex. Expired timers call dispatch from their own
// goroutine, and dispatch is expected to take that mutex before calling fire.
type PendingWork struct {
	clock    clockwork.Clock
	dispatch func(workID)
	nextID   workID
	items    map[workID]*work
}

func newPendingWork(clock clockwork.Clock, dispatch func(workID)) *PendingWork {
	return &PendingWork{
		clock:    clock,
		dispatch: dispatch,
		items:    make(map[workID]*work),
	}
}

// After arms fn to run once after delay.
func (pending *PendingWork) After(scope uint64, delay time.Duration, fn func()) (workID, error) {
	if err := pending.checkScope(scope); err != nil {
		return 0, err
	}
	if delay < 0 {
		delay = 0
	}
	item := pending.newWork(scope, fn)
	item.deadline = pending.clock.Now().Add(delay)
	item.timer = pending.clock.AfterFunc(delay, pending.trigger(item.id))
	return item.id, nil
}

// Every arms fn to run at anchor+period, anchor+2*period, and so on, where
// the anchor is the arming instant. Deadlines are derived from the anchor
// so a late callback never shifts the ones after it.
func (pending *PendingWork) Every(scope uint64, period time.Duration, fn func()) (workID, error) {
	if period <= 0 {
		return 0, fmt.Errorf("repeating work needs a positive period, got %s", period)
	}
	if err := pending.checkScope(scope); err != nil {
		return 0, err
	}
	item := pending.newWork(scope, fn)
	item.anchor = pending.clock.Now()
	item.period = period
	item.deadline = item.anchor.Add(period)
	item.timer = pending.clock.AfterFunc(period, pending.trigger(item.id))
	return item.id, nil
}

// fire consumes one expiry of id and returns the callback to run. Repeating
// work is re-armed before the callback runs so that the callback may cancel it.
func (pending *PendingWork) fire(id workID) (func(), bool) {
	item, ok := pending.items[id]
	if !ok {
		return nil, false
	}
	if item.period == 0 {
		delete(pending.items, id)
		return item.fn, true
	}

	item.fires++
	next := item.anchor.Add(time.Duration(item.fires+1) * item.period)
	item.deadline = next
	item.timer = pending.clock.AfterFunc(pending.clock.Until(next), pending.trigger(id))
	return item.fn, true
}

// Cancel stops a single item. Unknown ids are ignored.
func (pending *PendingWork) Cancel(id workID) {
	item, ok := pending.items[id]
	if !ok {
		return
	}
	item.timer.Stop()
	delete(pending.items, id)
}

// CancelAll stops every live item and returns how many were stopped.
func (pending *PendingWork) CancelAll() int {
	count := len(pending.items)
	for id, item := range pending.items {
		item.timer.Stop()
		delete(pending.items, id)
	}
	return count
}

// Len returns the number of live items.
func (pending *PendingWork) Len() int {
	return len(pending.items)
}

func (pending *PendingWork) nextDeadline() (time.Time, bool) {
	var next time.Time
	found := false
	for _, item := range pending.items {
		if !found || item.deadline.Before(next) {
			next = item.deadline
			found = true
		}
	}
	return next, found
}

func (pending *PendingWork) dueCount(now time.Time) int {
	count := 0
	for _, item := range pending.items {
		if !item.deadline.After(now) {
			count++
		}
	}
	return count
}

func (pending *PendingWork) checkScope(scope uint64) error {
	for _, item := range pending.items {
		if item.scope != scope {
			return fmt.Errorf("%w: arming scope %d while scope %d is live", ErrSchedulingOverlap, scope, item.scope)
		}
	}
	return nil
}

func (pending *PendingWork) newWork(scope uint64, fn func()) *work {
	pending.nextID++
	item := &work{
		id:    pending.nextID,
		scope: scope,
		fn:    fn,
	}
	pending.items[item.id] = item
	return item
}

func (pending *PendingWork) trigger(id workID) func() {
	return func() {
		pending.dispatch(id)
	}
}
