package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/warpdl/warptimer/cmd/common"
	"github.com/warpdl/warptimer/pkg/timercli"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

const callTimeout = 5 * time.Second

var (
	errNoTimer        = errors.New("no such timer")
	errAmbiguousTimer = errors.New("timer reference is ambiguous")
	errMissingArg     = errors.New("missing argument")
)

var newClient = timercli.NewClient

// callContext bounds a single request to the daemon.
func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callTimeout)
}

// resolveTimer finds the timer a user reference points at: an exact id, a
// unique id prefix, or a unique case-insensitive name.
func resolveTimer(timers []timerlib.Projection, ref string) (timerlib.Projection, error) {
	if ref == "" {
		return timerlib.Projection{}, errMissingArg
	}
	for _, t := range timers {
		if t.ID == ref {
			return t, nil
		}
	}
	var matches []timerlib.Projection
	for _, t := range timers {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	if len(matches) == 0 {
		for _, t := range timers {
			if strings.EqualFold(t.Name, ref) {
				matches = append(matches, t)
			}
		}
	}
	switch len(matches) {
	case 0:
		return timerlib.Projection{}, fmt.Errorf("%w: %q", errNoTimer, ref)
	case 1:
		return matches[0], nil
	}
	return timerlib.Projection{}, fmt.Errorf("%w: %q matches %d timers", errAmbiguousTimer, ref, len(matches))
}

// lookupTimer resolves ref against the daemon's current timers.
func lookupTimer(ctx context.Context, c *timercli.Client, ref string) (timerlib.Projection, error) {
	timers, err := c.List(ctx)
	if err != nil {
		return timerlib.Projection{}, err
	}
	return resolveTimer(timers, ref)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// describe renders a one-line summary of a timer.
func describe(p timerlib.Projection) string {
	s := fmt.Sprintf("%s (%s) %s %s", p.Name, shortID(p.ID), p.Display, common.Status(p))
	if p.Chain != "" {
		s += " " + p.Chain
	}
	return s
}
