package session

import "time"

// ComputeDuration returns whole elapsed seconds of active (unpaused) time.
// It is never negative, never decreases while running and is frozen while
// paused.
func ComputeDuration(now, start time.Time, totalPaused time.Duration, isPaused bool, lastPause *time.Time) int {
	elapsed := now.Sub(start) - totalPaused
	if isPaused && lastPause != nil {
		elapsed -= now.Sub(*lastPause)
	}
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Second)
}

// Duration is the session's active elapsed time in seconds at now.
func (s Session) Duration(now time.Time) int {
	return ComputeDuration(now, s.StartTimestamp, s.TotalPausedTime, s.IsPaused, s.LastPauseTimestamp)
}
