package common

const (
	// DefaultTCPPort is the TCP fallback port. The HTTP endpoints listen on
	// the port after it.
	DefaultTCPPort = 3850

	// TCPHost is the address the TCP fallback binds to.
	TCPHost = "localhost"

	// SocketName is the Unix socket file name inside the temp directory.
	SocketName = "warptimer.sock"
)

// JSON-RPC method names.
const (
	MethodGetVersion    = "system.getVersion"
	MethodCreate        = "timer.create"
	MethodGet           = "timer.get"
	MethodList          = "timer.list"
	MethodStart         = "timer.start"
	MethodPause         = "timer.pause"
	MethodReset         = "timer.reset"
	MethodResetChain    = "timer.resetChain"
	MethodSetLink       = "timer.setLink"
	MethodDelete        = "timer.delete"
	MethodReorder       = "timer.reorder"
	MethodSetVisibility = "view.setVisibility"
)

// Push notification names.
const (
	NotifyUpdated   = "timer.updated"
	NotifyRemoved   = "timer.removed"
	NotifyReordered = "timer.reordered"
)
