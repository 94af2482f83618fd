package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/warpdl/warptimer/cmd/common"
	tcommon "github.com/warpdl/warptimer/common"
	"github.com/warpdl/warptimer/pkg/timercli"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

var (
	watchWeb bool

	watchFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "web",
			Usage:       "attach over the websocket endpoint as a viewer (reads " + tcommon.RPCSecretEnv + ")",
			Destination: &watchWeb,
		},
	}
)

// watchClient connects over the socket, or as a websocket viewer with --web.
// Viewers drive the daemon's visibility themselves.
func watchClient() (*timercli.Client, error) {
	if !watchWeb {
		return newClient()
	}
	cctx, cancel := callContext()
	defer cancel()
	return timercli.NewWebSocketClient(cctx, timercli.WebSocketURL(), os.Getenv(tcommon.RPCSecretEnv))
}

// watcher keeps one bar per timer in sync with daemon notifications.
type watcher struct {
	mu   sync.Mutex
	p    *mpb.Progress
	bars map[string]*common.TimerBar
	next int
}

func newWatcher(p *mpb.Progress) *watcher {
	return &watcher{p: p, bars: make(map[string]*common.TimerBar)}
}

func (w *watcher) update(proj timerlib.Projection) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.bars == nil {
		return
	}
	if b, ok := w.bars[proj.ID]; ok {
		b.Update(proj)
		return
	}
	w.bars[proj.ID] = common.InitTimerBar(w.p, proj, w.next)
	w.next++
}

func (w *watcher) remove(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.bars[id]; ok {
		b.Abort(true)
		delete(w.bars, id)
	}
}

func (w *watcher) reorder(ids []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, id := range ids {
		if b, ok := w.bars[id]; ok {
			b.SetPriority(i)
		}
	}
	w.next = len(ids)
}

// stop aborts every bar, keeping the last frame on screen, and waits for
// the progress container to finish.
func (w *watcher) stop() {
	w.mu.Lock()
	for _, b := range w.bars {
		b.Abort(false)
	}
	w.bars = nil
	w.mu.Unlock()
	w.p.Wait()
}

func watch(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := watchClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "watch", "new_client", err)
		return nil
	}
	defer client.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := newWatcher(mpb.New(mpb.WithWidth(40)))
	client.OnUpdated(w.update)
	client.OnRemoved(w.remove)
	client.OnReordered(w.reorder)

	cctx, cancel := callContext()
	client.CheckVersionMismatch(cctx, os.Stderr, currentBuildArgs.Version)
	timers, err := client.List(cctx)
	cancel()
	if err != nil {
		common.PrintRuntimeErr(ctx, "watch", "get_list", err)
		w.stop()
		return nil
	}
	if len(timers) == 0 {
		fmt.Println("warptimer: no timers yet, waiting for new ones (Ctrl+C to exit)")
	}
	for _, t := range timers {
		w.update(t)
	}
	if !watchWeb {
		if err := setVisibility(client, false); err != nil {
			common.PrintRuntimeErr(ctx, "watch", "set_visibility", err)
		}
	}

	<-sigCtx.Done()
	client.RemoveHandlers()
	w.stop()
	if !watchWeb {
		if err := setVisibility(client, true); err != nil {
			common.PrintRuntimeErr(ctx, "watch", "set_visibility", err)
		}
	}
	return nil
}

type visibilitySetter interface {
	SetVisibility(ctx context.Context, hidden bool) error
}

func setVisibility(c visibilitySetter, hidden bool) error {
	cctx, cancel := callContext()
	defer cancel()
	return c.SetVisibility(cctx, hidden)
}
