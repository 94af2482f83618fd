package timerlib

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// MaxTotalSeconds is the longest duration a timer may hold.
const MaxTotalSeconds = math.MaxInt32

// Sound is a key into the fixed sound table.
type Sound string

const (
	SoundBell    Sound = "bell"
	SoundDigital Sound = "digital"
	SoundChime   Sound = "chime"
)

// Sounds lists every valid sound key in display order.
var Sounds = []Sound{SoundBell, SoundDigital, SoundChime}

// SoundNames returns the valid sound keys joined with sep.
func SoundNames(sep string) string {
	names := make([]string, len(Sounds))
	for i, s := range Sounds {
		names[i] = string(s)
	}
	return strings.Join(names, sep)
}

// Valid reports whether s is one of the known sound keys.
func (s Sound) Valid() bool {
	switch s {
	case SoundBell, SoundDigital, SoundChime:
		return true
	}
	return false
}

// ParseSound converts a user supplied string into a Sound.
// An empty string selects the bell.
func ParseSound(v string) (Sound, error) {
	if v == "" {
		return SoundBell, nil
	}
	s := Sound(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q (want %s)", ErrUnknownSound, v, SoundNames(", "))
	}
	return s, nil
}

// Timer is one countdown. It is a plain record: all behaviour lives in the
// engine, which looks timers up by ID.
type Timer struct {
	ID               string
	Name             string
	TotalSeconds     int
	RemainingSeconds int
	Sound            Sound
	IsRunning        bool
	// NextTimerID is the chain link, empty when unset. It is a weak reference
	// and is cleared when the target is deleted.
	NextTimerID string
}

// timerJSON is the persisted shape; nextTimerId is null when unset.
type timerJSON struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	TotalSeconds     int     `json:"totalSeconds"`
	RemainingSeconds int     `json:"remainingSeconds"`
	Sound            Sound   `json:"sound"`
	IsRunning        bool    `json:"isRunning"`
	NextTimerID      *string `json:"nextTimerId"`
}

func (t Timer) MarshalJSON() ([]byte, error) {
	j := timerJSON{
		ID:               t.ID,
		Name:             t.Name,
		TotalSeconds:     t.TotalSeconds,
		RemainingSeconds: t.RemainingSeconds,
		Sound:            t.Sound,
		IsRunning:        t.IsRunning,
	}
	if t.NextTimerID != "" {
		next := t.NextTimerID
		j.NextTimerID = &next
	}
	return json.Marshal(j)
}

func (t *Timer) UnmarshalJSON(data []byte) error {
	var j timerJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*t = Timer{
		ID:               j.ID,
		Name:             j.Name,
		TotalSeconds:     j.TotalSeconds,
		RemainingSeconds: j.RemainingSeconds,
		Sound:            j.Sound,
		IsRunning:        j.IsRunning,
	}
	if j.NextTimerID != nil {
		t.NextTimerID = *j.NextTimerID
	}
	return nil
}

// normalize enforces the record invariants: remaining within [0, total] and
// a finished timer is never running.
func (t *Timer) normalize() {
	if t.TotalSeconds < 0 {
		t.TotalSeconds = 0
	}
	if t.TotalSeconds > MaxTotalSeconds {
		t.TotalSeconds = MaxTotalSeconds
	}
	if t.RemainingSeconds < 0 {
		t.RemainingSeconds = 0
	}
	if t.RemainingSeconds > t.TotalSeconds {
		t.RemainingSeconds = t.TotalSeconds
	}
	if t.RemainingSeconds == 0 {
		t.IsRunning = false
	}
}

// TotalFromHMS converts an hours/minutes/seconds triple into seconds.
func TotalFromHMS(hours, minutes, seconds int) (int, error) {
	if hours < 0 || minutes < 0 || seconds < 0 {
		return 0, ErrInvalidDuration
	}
	// each term is bounded first so the sum cannot wrap
	if hours > MaxTotalSeconds/3600 || minutes > MaxTotalSeconds/60 || seconds > MaxTotalSeconds {
		return 0, ErrInvalidDuration
	}
	total := hours*3600 + minutes*60 + seconds
	if total > MaxTotalSeconds {
		return 0, ErrInvalidDuration
	}
	return total, nil
}

// ValidTotal reports whether seconds is a storable timer duration.
func ValidTotal(seconds int) bool {
	return seconds >= 0 && seconds <= MaxTotalSeconds
}

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
