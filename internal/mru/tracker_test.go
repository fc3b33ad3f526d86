package mru

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1broseidon/paneswitch/internal/catalog"
)

func TestTracker_Rank(t *testing.T) {
	tr := New(1)
	tr.Seed(30, []int{10, 30, 20, 1})

	assert.Equal(t, []int{30, 10, 20}, tr.Order())
	assert.Equal(t, 0, tr.Rank(30))
	assert.Equal(t, 2, tr.Rank(20))
	assert.Equal(t, Unranked, tr.Rank(99))
	assert.Equal(t, Unranked, tr.Rank(1), "own pid is never tracked")
}

func TestTracker_ActivationMovesToFront(t *testing.T) {
	tr := New(1)
	tr.Seed(0, []int{10, 20, 30})

	tr.Activated(30)
	assert.Equal(t, []int{30, 10, 20}, tr.Order())

	tr.Activated(40)
	assert.Equal(t, []int{40, 30, 10, 20}, tr.Order())

	tr.Activated(1)
	assert.Equal(t, []int{40, 30, 10, 20}, tr.Order())

	tr.Terminated(30)
	assert.Equal(t, []int{40, 10, 20}, tr.Order())
	assert.Equal(t, Unranked, tr.Rank(30))

	tr.Terminated(77)
	assert.Equal(t, []int{40, 10, 20}, tr.Order())
}

func TestTracker_RankAgesMonotonically(t *testing.T) {
	tr := New(0)
	tr.Activated(5)
	prev := tr.Rank(5)
	assert.Equal(t, 0, prev)
	for pid := 100; pid < 110; pid++ {
		tr.Activated(pid)
		r := tr.Rank(5)
		assert.GreaterOrEqual(t, r, prev)
		prev = r
	}
	// Reactivating an already-older pid still never moves 5 forward.
	tr.Activated(100)
	assert.GreaterOrEqual(t, tr.Rank(5), prev)
}

func TestTracker_SortByMRU(t *testing.T) {
	tr := New(0)
	tr.Seed(0, []int{2, 1})

	records := []catalog.Record{
		{ID: 1, PID: 1, Title: "a"},
		{ID: 2, PID: 9, Title: "unknown-1"},
		{ID: 3, PID: 2, Title: "b"},
		{ID: 4, PID: 8, Title: "unknown-2"},
		{ID: 5, PID: 1, Title: "a2"},
	}
	sorted := tr.SortByMRU(records)

	var titles []string
	for _, r := range sorted {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"b", "a", "a2", "unknown-1", "unknown-2"}, titles)
	assert.Equal(t, "a", records[0].Title, "input is not reordered")
}

func TestTracker_WindowRecencyWithinProcess(t *testing.T) {
	tr := New(0)
	tr.WindowActivated(1, 11)
	tr.WindowActivated(1, 12)

	records := []catalog.Record{
		{ID: 11, PID: 1},
		{ID: 13, PID: 1},
		{ID: 12, PID: 1},
	}
	sorted := tr.SortByMRU(records)
	assert.Equal(t, []int64{12, 11, 13}, []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID})

	tr.Forget(map[int64]struct{}{11: {}})
	sorted = tr.SortByMRU(records)
	assert.Equal(t, []int64{11, 13, 12}, []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID})
}
