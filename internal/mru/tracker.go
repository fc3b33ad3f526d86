// Package mru keeps the most-recently-used order of applications.
//
// A Tracker belongs to the main flow; it is not safe for concurrent use.
package mru

import (
	"math"
	"sort"

	"github.com/1broseidon/paneswitch/internal/catalog"
)

// Unranked is the rank of a process the tracker has never seen.
const Unranked = math.MaxInt

// Tracker records process activations, most recent first. Each pid appears
// at most once and the tracker's own pid is never recorded.
type Tracker struct {
	self    int
	order   []int
	windows []int64
}

// New creates a tracker that ignores selfPID.
func New(selfPID int) *Tracker {
	return &Tracker{self: selfPID}
}

// Seed initializes the order with the frontmost pid followed by the other
// running pids, keeping the first occurrence of duplicates. A zero front
// pid is skipped.
func (t *Tracker) Seed(front int, others []int) {
	t.order = t.order[:0]
	if front != 0 && front != t.self {
		t.order = append(t.order, front)
	}
	for _, pid := range others {
		if pid == t.self || pid == 0 || t.index(pid) >= 0 {
			continue
		}
		t.order = append(t.order, pid)
	}
}

// Activated moves pid to the front, inserting it when new.
func (t *Tracker) Activated(pid int) {
	if pid == t.self || pid == 0 {
		return
	}
	t.order = moveToFront(t.order, pid)
}

// WindowActivated records which window of an application was used last.
// It only affects the order of windows that share a process.
func (t *Tracker) WindowActivated(pid int, id int64) {
	if pid == t.self {
		return
	}
	t.Activated(pid)
	t.windows = moveToFront(t.windows, id)
}

// Terminated removes pid.
func (t *Tracker) Terminated(pid int) {
	if i := t.index(pid); i >= 0 {
		t.order = append(t.order[:i], t.order[i+1:]...)
	}
}

// Forget drops the window recency of ids not present in live.
func (t *Tracker) Forget(live map[int64]struct{}) {
	kept := t.windows[:0]
	for _, id := range t.windows {
		if _, ok := live[id]; ok {
			kept = append(kept, id)
		}
	}
	t.windows = kept
}

// Rank returns 0 for the most recently activated pid and Unranked for pids
// the tracker does not know.
func (t *Tracker) Rank(pid int) int {
	if i := t.index(pid); i >= 0 {
		return i
	}
	return Unranked
}

// Order returns a copy of the activation order.
func (t *Tracker) Order() []int {
	out := make([]int, len(t.order))
	copy(out, t.order)
	return out
}

// SortByMRU returns records stable-sorted by the activation rank of their
// owner. Windows of the same tracked process are ordered by their own
// recency; everything else keeps catalog order.
func (t *Tracker) SortByMRU(records []catalog.Record) []catalog.Record {
	out := make([]catalog.Record, len(records))
	copy(out, records)

	windowRank := make(map[int64]int, len(t.windows))
	for i, id := range t.windows {
		windowRank[id] = i
	}
	rankOf := func(id int64) int {
		if r, ok := windowRank[id]; ok {
			return r
		}
		return Unranked
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := t.Rank(out[i].PID), t.Rank(out[j].PID)
		if ri != rj {
			return ri < rj
		}
		if ri == Unranked {
			return false
		}
		// Known ranks are unique per pid, so both records share a process.
		return rankOf(out[i].ID) < rankOf(out[j].ID)
	})
	return out
}

func (t *Tracker) index(pid int) int {
	for i, p := range t.order {
		if p == pid {
			return i
		}
	}
	return -1
}

func moveToFront[T comparable](list []T, v T) []T {
	for i, x := range list {
		if x == v {
			copy(list[1:i+1], list[:i])
			list[0] = v
			return list
		}
	}
	list = append(list, v)
	copy(list[1:], list[:len(list)-1])
	list[0] = v
	return list
}
