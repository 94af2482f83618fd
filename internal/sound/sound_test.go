package sound

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/warpdl/warptimer/pkg/timerlib"
)

func TestFile(t *testing.T) {
	tests := map[timerlib.Sound]string{
		timerlib.SoundBell:    "DingiDong.ogg",
		timerlib.SoundDigital: "dishL.wav",
		timerlib.SoundChime:   "DingiDong.ogg",
	}
	for key, want := range tests {
		got, err := File(key)
		if err != nil {
			t.Fatalf("File(%s): %v", key, err)
		}
		if got != want {
			t.Errorf("File(%s) = %s, want %s", key, got, want)
		}
	}
	if _, err := File("gong"); !errors.Is(err, ErrUnknownSound) {
		t.Errorf("expected ErrUnknownSound, got %v", err)
	}
}

func TestCommandPlayer(t *testing.T) {
	p := NewCommandPlayer("", "/usr/share/warptimer")
	if p.Command != DefaultCommand {
		t.Fatalf("expected default command, got %s", p.Command)
	}
	var gotName string
	var gotArgs []string
	p.run = func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}
	if err := p.Play(context.Background(), timerlib.SoundDigital); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if gotName != DefaultCommand {
		t.Errorf("ran %s", gotName)
	}
	want := filepath.Join("/usr/share/warptimer", "dishL.wav")
	if len(gotArgs) != 1 || gotArgs[0] != want {
		t.Errorf("args = %v, want [%s]", gotArgs, want)
	}
}

func TestCommandPlayer_Failure(t *testing.T) {
	p := NewCommandPlayer("aplay", t.TempDir())
	boom := errors.New("exit status 1")
	p.run = func(context.Context, string, ...string) error { return boom }
	if err := p.Play(context.Background(), timerlib.SoundBell); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
	if err := p.Play(context.Background(), "gong"); !errors.Is(err, ErrUnknownSound) {
		t.Fatalf("expected ErrUnknownSound, got %v", err)
	}
}

func TestBellPlayer(t *testing.T) {
	var buf bytes.Buffer
	p := NewBellPlayer(&buf)
	p.gap = time.Millisecond
	if err := p.Play(context.Background(), timerlib.SoundDigital); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if buf.String() != "\a\a\a" {
		t.Errorf("expected three bells, got %q", buf.String())
	}
}

func TestBellPlayer_Cancelled(t *testing.T) {
	var buf bytes.Buffer
	p := NewBellPlayer(&buf)
	p.gap = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Play(ctx, timerlib.SoundChime); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if buf.String() != "\a" {
		t.Errorf("expected one bell before cancel, got %q", buf.String())
	}
}

func TestNopPlayer(t *testing.T) {
	if err := (NopPlayer{}).Play(context.Background(), timerlib.SoundBell); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (NopPlayer{}).Play(context.Background(), "gong"); !errors.Is(err, ErrUnknownSound) {
		t.Errorf("expected ErrUnknownSound, got %v", err)
	}
}
