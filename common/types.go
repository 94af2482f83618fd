package common

import "github.com/warpdl/warptimer/pkg/timerlib"

// CreateParams is the input for timer.create. The duration is either
// TotalSeconds or the hours/minutes/seconds triple; the triple wins when any
// of its fields is set.
type CreateParams struct {
	Name         string `json:"name"`
	Hours        int    `json:"hours,omitempty"`
	Minutes      int    `json:"minutes,omitempty"`
	Seconds      int    `json:"seconds,omitempty"`
	TotalSeconds int    `json:"totalSeconds,omitempty"`
	Sound        string `json:"sound,omitempty"`
}

// Total resolves the requested duration in seconds.
func (p CreateParams) Total() (int, error) {
	if p.Hours != 0 || p.Minutes != 0 || p.Seconds != 0 {
		return timerlib.TotalFromHMS(p.Hours, p.Minutes, p.Seconds)
	}
	if !timerlib.ValidTotal(p.TotalSeconds) {
		return 0, timerlib.ErrInvalidDuration
	}
	return p.TotalSeconds, nil
}

// IDParams addresses a single timer.
type IDParams struct {
	ID string `json:"id"`
}

// LinkParams is the input for timer.setLink. An empty To clears the link.
type LinkParams struct {
	From string `json:"from"`
	To   string `json:"to,omitempty"`
}

// ReorderParams is the input for timer.reorder.
type ReorderParams struct {
	IDs []string `json:"ids"`
}

// VisibilityParams is the input for view.setVisibility.
type VisibilityParams struct {
	Hidden bool `json:"hidden"`
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// ListResult carries projections in display order.
type ListResult struct {
	Timers []timerlib.Projection `json:"timers"`
}

// RemovedNotification is pushed when a timer is deleted.
type RemovedNotification struct {
	ID string `json:"id"`
}

// ReorderedNotification is pushed when the display order changes.
type ReorderedNotification struct {
	IDs []string `json:"ids"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}
