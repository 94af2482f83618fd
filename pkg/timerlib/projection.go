package timerlib

// Projection is what a render surface needs to draw one timer.
type Projection struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	TotalSeconds       int     `json:"totalSeconds"`
	RemainingSeconds   int     `json:"remainingSeconds"`
	IsRunning          bool    `json:"isRunning"`
	ProgressPercentage float64 `json:"progressPercentage"`
	Display            string  `json:"display"`
	Sound              Sound   `json:"sound"`
	NextTimerID        string  `json:"nextTimerId,omitempty"`
	Chain              string  `json:"chain"`
}

// Progress returns the bar fill for a timer that is counting.
// The elapsed count includes the second currently in progress, so a running
// bar leads the clock by one second and reaches 100 on the last tick.
func Progress(t Timer) float64 {
	if t.TotalSeconds <= 0 {
		return 0
	}
	elapsed := t.TotalSeconds - t.RemainingSeconds
	p := float64(elapsed+1) * 100 / float64(t.TotalSeconds)
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return p
}

// ChainLabel renders the chain indicator for a link target.
// An empty id yields an empty label; a missing target renders as Unknown.
func ChainLabel(nextID string, lookup func(string) (Timer, bool)) string {
	if nextID == "" {
		return ""
	}
	next, ok := lookup(nextID)
	if !ok {
		return "→ Unknown"
	}
	return "→ " + next.Name
}

// Project builds the projection of t with the given progress.
func Project(t Timer, progress float64, lookup func(string) (Timer, bool)) Projection {
	return Projection{
		ID:                 t.ID,
		Name:               t.Name,
		TotalSeconds:       t.TotalSeconds,
		RemainingSeconds:   t.RemainingSeconds,
		IsRunning:          t.IsRunning,
		ProgressPercentage: progress,
		Display:            FormatClock(t.RemainingSeconds),
		Sound:              t.Sound,
		NextTimerID:        t.NextTimerID,
		Chain:              ChainLabel(t.NextTimerID, lookup),
	}
}

// RestingProgress is the bar fill for a timer rendered outside of a tick:
// full when finished, empty when untouched, otherwise the counting fill.
func RestingProgress(t Timer) float64 {
	switch {
	case t.TotalSeconds > 0 && t.RemainingSeconds == 0:
		return 100
	case !t.IsRunning && t.RemainingSeconds == t.TotalSeconds:
		return 0
	}
	return Progress(t)
}
