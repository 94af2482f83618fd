package daemon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/warpdl/warptimer/common"
	"github.com/warpdl/warptimer/internal/config"
	"github.com/warpdl/warptimer/internal/server"
	"github.com/warpdl/warptimer/internal/sound"
	"github.com/warpdl/warptimer/pkg/logger"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

func testSettings(t *testing.T) *config.Config {
	t.Helper()
	dir, err := os.MkdirTemp("", "wtd")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	t.Setenv(common.SocketPathEnv, filepath.Join(dir, "d.sock"))
	s := config.Default(dir)
	s.Player = config.PlayerNone
	return s
}

// startRunner runs r in the background and waits until its engine is up.
func startRunner(t *testing.T, r *Runner) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- r.Start(context.Background()) }()
	deadline := time.Now().Add(2 * time.Second)
	for r.Engine() == nil {
		if time.Now().After(deadline) {
			t.Fatal("runner did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return errCh
}

func stopRunner(t *testing.T, r *Runner, errCh <-chan error) {
	t.Helper()
	if err := r.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return")
	}
	if r.IsRunning() {
		t.Error("runner still reports running")
	}
}

func TestNew_RequiresSettings(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrNoSettings) {
		t.Fatalf("New(nil) = %v, want ErrNoSettings", err)
	}
	if _, err := New(&Config{}, nil); !errors.Is(err, ErrNoSettings) {
		t.Fatalf("New(empty) = %v, want ErrNoSettings", err)
	}
}

func TestRunner_StartShutdown(t *testing.T) {
	r, err := New(&Config{Settings: testSettings(t)}, &Dependencies{Fs: afero.NewMemMapFs()})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Shutdown(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Shutdown before Start = %v, want ErrNotRunning", err)
	}
	errCh := startRunner(t, r)
	if !r.IsRunning() {
		t.Error("expected running")
	}
	if err := r.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start = %v, want ErrAlreadyRunning", err)
	}
	stopRunner(t, r, errCh)
}

func TestRunner_ListenFailureReleasesWebPort(t *testing.T) {
	busy, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	settings := testSettings(t)
	settings.TCPPort = port
	t.Setenv(common.ForceTCPEnv, "1")
	r, err := New(&Config{
		Settings: settings,
		RPC:      server.RPCConfig{Secret: "s3cret"},
	}, &Dependencies{Fs: afero.NewMemMapFs()})
	if err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- r.Start(context.Background()) }()
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected Start to fail on an occupied port")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return")
	}
	if r.IsRunning() {
		t.Error("runner still reports running")
	}

	web, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port+1))
	if err != nil {
		t.Fatalf("web port still bound after failed start: %v", err)
	}
	web.Close()
}

func TestRunner_FileStoreSurvivesRestart(t *testing.T) {
	fs := afero.NewMemMapFs()
	settings := testSettings(t)
	r, err := New(&Config{Settings: settings}, &Dependencies{Fs: fs})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	errCh := startRunner(t, r)
	if _, err := r.Engine().Create(ctx, "Laundry", 90, timerlib.SoundChime); err != nil {
		t.Fatalf("Create: %v", err)
	}
	stopRunner(t, r, errCh)

	if ok, _ := afero.Exists(fs, filepath.Join(settings.Dir, timerlib.StorageKey+".json")); !ok {
		t.Fatal("store file was not written")
	}

	errCh = startRunner(t, r)
	list, err := r.Engine().List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "Laundry" || list[0].TotalSeconds != 90 {
		t.Errorf("restored timers = %+v", list)
	}
	stopRunner(t, r, errCh)
}

func TestRunner_SQLiteStore(t *testing.T) {
	settings := testSettings(t)
	settings.Store = config.StoreSQLite
	r, err := New(&Config{Settings: settings}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	errCh := startRunner(t, r)
	if _, err := r.Engine().Create(ctx, "Bread", 600, timerlib.SoundBell); err != nil {
		t.Fatalf("Create: %v", err)
	}
	stopRunner(t, r, errCh)

	if _, err := os.Stat(filepath.Join(settings.Dir, SQLiteFileName)); err != nil {
		t.Fatalf("database missing: %v", err)
	}
	errCh = startRunner(t, r)
	list, _ := r.Engine().List(ctx)
	if len(list) != 1 || list[0].Name != "Bread" {
		t.Errorf("restored timers = %+v", list)
	}
	stopRunner(t, r, errCh)
}

func TestRunner_UnwritableStoreRunsInMemory(t *testing.T) {
	settings := testSettings(t)
	log := logger.NewMockLogger()
	r, err := New(&Config{Settings: settings}, &Dependencies{
		Fs:  afero.NewReadOnlyFs(afero.NewMemMapFs()),
		Log: log,
	})
	if err != nil {
		t.Fatal(err)
	}
	errCh := startRunner(t, r)
	if _, err := r.Engine().Create(context.Background(), "Tea", 60, timerlib.SoundBell); err != nil {
		t.Fatalf("Create must succeed in memory: %v", err)
	}
	stopRunner(t, r, errCh)
	if len(log.Errors()) == 0 {
		t.Error("expected the persistence failure to be logged")
	}
	found := false
	for _, w := range log.Warnings() {
		if strings.Contains(w, "not saved") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an unsaved-session warning, got %v", log.Warnings())
	}
}

func TestRunner_ShutdownTimeoutConfig(t *testing.T) {
	r, err := New(&Config{Settings: testSettings(t), ShutdownTimeout: 2 * time.Second}, &Dependencies{Fs: afero.NewMemMapFs()})
	if err != nil {
		t.Fatal(err)
	}
	errCh := startRunner(t, r)
	stopRunner(t, r, errCh)
}

func TestNewPlayer(t *testing.T) {
	s := config.Default("/tmp/x")
	var bell bytes.Buffer

	s.Player = config.PlayerBell
	if _, ok := NewPlayer(s, &bell).(*sound.BellPlayer); !ok {
		t.Error("bell setting should select BellPlayer")
	}
	s.Player = config.PlayerNone
	if _, ok := NewPlayer(s, &bell).(sound.NopPlayer); !ok {
		t.Error("none setting should select NopPlayer")
	}
	s.Player = config.PlayerCommand
	s.SoundCommand = "aplay"
	p, ok := NewPlayer(s, &bell).(*sound.CommandPlayer)
	if !ok {
		t.Fatal("command setting should select CommandPlayer")
	}
	if p.Command != "aplay" || p.Dir != s.SoundDir {
		t.Errorf("CommandPlayer = %+v", p)
	}
}
