package server

import (
	"context"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/warpdl/warptimer/common"
	"github.com/warpdl/warptimer/pkg/logger"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

const notifyQueueSize = 256

type notification struct {
	method string
	params any
}

// RPCNotifier maintains a set of connected jrpc2 servers and broadcasts
// push notifications to all of them. It is the engine's Renderer: renders
// are queued and delivered by Run, so a slow client never stalls the engine.
type RPCNotifier struct {
	mu      sync.RWMutex
	servers map[*jrpc2.Server]struct{}
	log     logger.Logger
	queue   chan notification
}

// NewRPCNotifier creates a new notifier.
func NewRPCNotifier(l logger.Logger) *RPCNotifier {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &RPCNotifier{
		servers: make(map[*jrpc2.Server]struct{}),
		log:     l,
		queue:   make(chan notification, notifyQueueSize),
	}
}

// Register adds a server to the broadcast set.
func (n *RPCNotifier) Register(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.servers[srv] = struct{}{}
}

// Unregister removes a server from the broadcast set.
func (n *RPCNotifier) Unregister(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.servers, srv)
}

// Broadcast sends a push notification to all registered servers.
// Servers that fail to receive (e.g., disconnected) are unregistered.
func (n *RPCNotifier) Broadcast(method string, params any) {
	n.mu.RLock()
	servers := make([]*jrpc2.Server, 0, len(n.servers))
	for srv := range n.servers {
		servers = append(servers, srv)
	}
	n.mu.RUnlock()

	var failed []*jrpc2.Server
	for _, srv := range servers {
		if err := srv.Notify(context.Background(), method, params); err != nil {
			n.log.Warning("server: push %s failed: %v", method, err)
			failed = append(failed, srv)
		}
	}

	if len(failed) > 0 {
		n.mu.Lock()
		for _, srv := range failed {
			delete(n.servers, srv)
		}
		n.mu.Unlock()
	}
}

// Count returns the number of registered servers.
func (n *RPCNotifier) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.servers)
}

// StopAll stops every registered server, closing its connection.
func (n *RPCNotifier) StopAll() {
	n.mu.Lock()
	servers := n.servers
	n.servers = make(map[*jrpc2.Server]struct{})
	n.mu.Unlock()
	for srv := range servers {
		srv.Stop()
	}
}

// Run delivers queued notifications in order until ctx is done.
func (n *RPCNotifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-n.queue:
			n.Broadcast(msg.method, msg.params)
		}
	}
}

func (n *RPCNotifier) enqueue(method string, params any) {
	select {
	case n.queue <- notification{method: method, params: params}:
	default:
		n.log.Warning("server: notification queue full, dropping %s", method)
	}
}

func (n *RPCNotifier) Render(p timerlib.Projection) {
	n.enqueue(common.NotifyUpdated, p)
}

func (n *RPCNotifier) Removed(id string) {
	n.enqueue(common.NotifyRemoved, &common.RemovedNotification{ID: id})
}

func (n *RPCNotifier) Reordered(ids []string) {
	n.enqueue(common.NotifyReordered, &common.ReorderedNotification{IDs: ids})
}
