// Package sound plays the alert attached to a timer when it completes.
package sound

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/warpdl/warptimer/pkg/timerlib"
)

// ErrUnknownSound is returned when a key has no entry in the sound table.
var ErrUnknownSound = errors.New("sound: unknown sound key")

// DefaultCommand is the external player used when none is configured.
const DefaultCommand = "paplay"

// table maps sound keys to the bundled audio files. chime has no file of its
// own and falls back to the bell recording.
var table = map[timerlib.Sound]string{
	timerlib.SoundBell:    "DingiDong.ogg",
	timerlib.SoundDigital: "dishL.wav",
	timerlib.SoundChime:   "DingiDong.ogg",
}

// File returns the audio file name for key.
func File(key timerlib.Sound) (string, error) {
	f, ok := table[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSound, key)
	}
	return f, nil
}

// Player plays a named sound. Play returns once playback has finished or ctx
// is done.
type Player interface {
	Play(ctx context.Context, key timerlib.Sound) error
}

// CommandPlayer plays sounds by running an external program with the
// resolved file as its only argument.
type CommandPlayer struct {
	Command string
	Dir     string

	// run is swapped out in tests.
	run func(ctx context.Context, name string, args ...string) error
}

// NewCommandPlayer returns a player running command on files under dir.
// An empty command selects DefaultCommand.
func NewCommandPlayer(command, dir string) *CommandPlayer {
	if command == "" {
		command = DefaultCommand
	}
	return &CommandPlayer{Command: command, Dir: dir, run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (p *CommandPlayer) Play(ctx context.Context, key timerlib.Sound) error {
	f, err := File(key)
	if err != nil {
		return err
	}
	path := filepath.Join(p.Dir, f)
	if err := p.run(ctx, p.Command, path); err != nil {
		return fmt.Errorf("sound: %s %s: %w", p.Command, path, err)
	}
	return nil
}

// bellPatterns is the number of BEL characters written per sound.
var bellPatterns = map[timerlib.Sound]int{
	timerlib.SoundBell:    1,
	timerlib.SoundDigital: 3,
	timerlib.SoundChime:   2,
}

// BellPlayer rings the terminal bell. Each sound has its own ring count.
type BellPlayer struct {
	mu  sync.Mutex
	w   io.Writer
	gap time.Duration
}

// NewBellPlayer returns a BellPlayer writing to w.
func NewBellPlayer(w io.Writer) *BellPlayer {
	return &BellPlayer{w: w, gap: 200 * time.Millisecond}
}

func (p *BellPlayer) Play(ctx context.Context, key timerlib.Sound) error {
	n, ok := bellPatterns[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSound, key)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < n; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.gap):
			}
		}
		if _, err := io.WriteString(p.w, "\a"); err != nil {
			return err
		}
	}
	return nil
}

// NopPlayer validates the key and plays nothing.
type NopPlayer struct{}

func (NopPlayer) Play(_ context.Context, key timerlib.Sound) error {
	_, err := File(key)
	return err
}
