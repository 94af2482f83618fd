package timercli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/warpdl/warptimer/common"
)

func TestSocketPath(t *testing.T) {
	t.Setenv(common.SocketPathEnv, "")
	if got, want := socketPath(), filepath.Join(os.TempDir(), common.SocketName); got != want {
		t.Errorf("socketPath() = %q, want %q", got, want)
	}
	t.Setenv(common.SocketPathEnv, "/tmp/custom.sock")
	if got := socketPath(); got != "/tmp/custom.sock" {
		t.Errorf("socketPath() = %q", got)
	}
}

func TestTCPPort(t *testing.T) {
	tests := []struct {
		env  string
		want int
	}{
		{"", common.DefaultTCPPort},
		{"4000", 4000},
		{"0", common.DefaultTCPPort},
		{"70000", common.DefaultTCPPort},
		{"abc", common.DefaultTCPPort},
	}
	for _, tt := range tests {
		t.Setenv(common.TCPPortEnv, tt.env)
		if got := tcpPort(); got != tt.want {
			t.Errorf("tcpPort() with %q = %d, want %d", tt.env, got, tt.want)
		}
	}
}

func TestForceTCP(t *testing.T) {
	t.Setenv(common.ForceTCPEnv, "1")
	if !forceTCP() {
		t.Error("expected forceTCP")
	}
	t.Setenv(common.ForceTCPEnv, "true")
	if forceTCP() {
		t.Error("only \"1\" enables forceTCP")
	}
}

func TestWebSocketURL(t *testing.T) {
	t.Setenv(common.TCPPortEnv, "4000")
	if got := WebSocketURL(); !strings.HasSuffix(got, ":4001/jsonrpc/ws") {
		t.Errorf("WebSocketURL() = %q", got)
	}
}
