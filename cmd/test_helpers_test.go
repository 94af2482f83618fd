package cmd

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/creachadair/jrpc2/channel"
	"github.com/spf13/afero"
	tcommon "github.com/warpdl/warptimer/common"
	"github.com/warpdl/warptimer/internal/config"
	idaemon "github.com/warpdl/warptimer/internal/daemon"
	"github.com/warpdl/warptimer/pkg/timercli"
)

// captureOutput captures stdout and stderr during function execution.
func captureOutput(f func()) (stdout, stderr string) {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	f()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	var bufOut, bufErr bytes.Buffer
	io.Copy(&bufOut, rOut)
	io.Copy(&bufErr, rErr)
	rOut.Close()
	rErr.Close()

	return bufOut.String(), bufErr.String()
}

// assertContains checks if output contains the expected substring.
func assertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, output)
	}
}

// assertNotContains checks if output does NOT contain the specified substring.
func assertNotContains(t *testing.T, output, notExpected string) {
	t.Helper()
	if strings.Contains(output, notExpected) {
		t.Errorf("expected output NOT to contain %q, got:\n%s", notExpected, output)
	}
}

// startTestDaemon runs an in-process daemon on a private socket and points
// newClient at it.
func startTestDaemon(t *testing.T) {
	t.Helper()
	dir, err := os.MkdirTemp("", "wtcmd")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "d.sock")
	t.Setenv(tcommon.SocketPathEnv, path)
	t.Setenv(timercli.VersionCheckEnv, "1")

	settings := config.Default(dir)
	settings.Player = config.PlayerNone
	r, err := idaemon.New(&idaemon.Config{Settings: settings}, &idaemon.Dependencies{Fs: afero.NewMemMapFs()})
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Start(context.Background())
	}()
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, err := net.Dial("unix", path)
		if err == nil {
			conn.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("daemon did not start: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	old := newClient
	newClient = func() (*timercli.Client, error) {
		conn, err := net.Dial("unix", path)
		if err != nil {
			return nil, err
		}
		return timercli.NewClientWithChannel(channel.Line(conn, conn)), nil
	}
	t.Cleanup(func() {
		newClient = old
		_ = r.Shutdown()
		<-done
	})
}

// run executes the CLI with args and returns what it printed.
func run(t *testing.T, args ...string) string {
	t.Helper()
	var runErr error
	out, _ := captureOutput(func() {
		runErr = Execute(append([]string{"warptimer"}, args...), BuildArgs{Version: "test", BuildType: "dev"})
	})
	if runErr != nil {
		t.Fatalf("Execute(%v): %v", args, runErr)
	}
	return out
}
