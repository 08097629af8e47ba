package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackVisitTransitions(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)

	state, transition, changed := TrackVisit(VisitState{}, day1)
	assert.Equal(t, VisitFirst, transition)
	assert.True(t, changed)
	assert.Equal(t, VisitState{Visits: 1, LastVisit: day1}, state)

	// 同一天内再次访问不改变计数
	sameDay := day1.Add(20 * time.Minute)
	next, transition, changed := TrackVisit(state, sameDay)
	assert.Equal(t, VisitSameDay, transition)
	assert.False(t, changed)
	assert.Equal(t, state, next)

	// 跨过午夜即算新的一天
	nextDay := day1.Add(45 * time.Minute)
	next, transition, changed = TrackVisit(next, nextDay)
	assert.Equal(t, VisitNewDay, transition)
	assert.True(t, changed)
	assert.Equal(t, VisitState{Visits: 2, LastVisit: nextDay}, next)
}

func TestTrackVisitEdgeCases(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("future last visit is same day", func(t *testing.T) {
		state := VisitState{Visits: 4, LastVisit: now.Add(72 * time.Hour)}
		next, transition, changed := TrackVisit(state, now)
		assert.Equal(t, VisitSameDay, transition)
		assert.False(t, changed)
		assert.Equal(t, state, next)
	})

	t.Run("several days later counts once", func(t *testing.T) {
		state := VisitState{Visits: 4, LastVisit: now.AddDate(0, 0, -5)}
		next, transition, _ := TrackVisit(state, now)
		assert.Equal(t, VisitNewDay, transition)
		assert.Equal(t, 5, next.Visits)
	})

	t.Run("repairs missing count", func(t *testing.T) {
		state := VisitState{Visits: 0, LastVisit: now.Add(-time.Hour)}
		next, transition, changed := TrackVisit(state, now)
		assert.Equal(t, VisitSameDay, transition)
		assert.True(t, changed)
		assert.Equal(t, 1, next.Visits)
	})

	t.Run("days compared in now's location", func(t *testing.T) {
		shanghai := time.FixedZone("CST", 8*3600)
		// 2025-06-10 15:30 UTC 在 +8 时区已经是 6 月 10 日 23:30
		last := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
		local := time.Date(2025, 6, 11, 0, 10, 0, 0, shanghai)
		_, transition, _ := TrackVisit(VisitState{Visits: 1, LastVisit: last}, local)
		assert.Equal(t, VisitNewDay, transition)
	})
}
