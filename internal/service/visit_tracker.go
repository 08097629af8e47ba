package service

import "time"

// VisitState 是单个浏览器会话的访问计数，由调用方负责持久化到会话中。
type VisitState struct {
	Visits    int
	LastVisit time.Time
}

// VisitTransition 表示本次请求命中的状态分支
type VisitTransition int

const (
	// VisitFirst 会话中没有上次访问时间
	VisitFirst VisitTransition = iota
	// VisitSameDay 与上次访问处于同一天，不做修改
	VisitSameDay
	// VisitNewDay 跨天后的首次访问，计数加一
	VisitNewDay
)

// TrackVisit computes the next session state for a request made at now.
// Calendar days are compared in now's location. The returned bool reports
// whether the state changed and needs to be written back.
func TrackVisit(state VisitState, now time.Time) (VisitState, VisitTransition, bool) {
	if state.LastVisit.IsZero() {
		if state.Visits < 1 {
			state.Visits = 1
		}
		state.LastVisit = now
		return state, VisitFirst, true
	}

	if daysBetween(state.LastVisit, now) < 1 {
		if state.Visits < 1 {
			state.Visits = 1
			return state, VisitSameDay, true
		}
		return state, VisitSameDay, false
	}

	if state.Visits < 1 {
		state.Visits = 1
	}
	state.Visits++
	state.LastVisit = now
	return state, VisitNewDay, true
}

// daysBetween returns the number of calendar days from earlier to later.
func daysBetween(earlier, later time.Time) int {
	loc := later.Location()
	e := earlier.In(loc)
	from := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(later.Year(), later.Month(), later.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
