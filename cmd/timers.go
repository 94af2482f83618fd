package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli"
	"github.com/warpdl/warptimer/cmd/common"
	tcommon "github.com/warpdl/warptimer/common"
	"github.com/warpdl/warptimer/pkg/timercli"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

var (
	addHours    int
	addMinutes  int
	addSeconds  int
	addDuration string
	addSound    string
	addStart    bool
	addThen     string

	addFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "hours, H",
			Usage:       "duration hours",
			Destination: &addHours,
		},
		cli.IntFlag{
			Name:        "minutes, m",
			Usage:       "duration minutes",
			Destination: &addMinutes,
		},
		cli.IntFlag{
			Name:        "seconds, s",
			Usage:       "duration seconds",
			Destination: &addSeconds,
		},
		cli.StringFlag{
			Name:        "duration, d",
			Usage:       "duration as a Go duration string, e.g. 1h30m (overrides -H/-m/-s)",
			Destination: &addDuration,
		},
		cli.StringFlag{
			Name:        "sound",
			Usage:       "completion sound: " + timerlib.SoundNames(", "),
			Value:       string(timerlib.SoundBell),
			Destination: &addSound,
		},
		cli.BoolFlag{
			Name:        "start",
			Usage:       "start the timer right away",
			Destination: &addStart,
		},
		cli.StringFlag{
			Name:        "after",
			Usage:       "link an existing timer to start this one when it completes",
			Destination: &addThen,
		},
	}

	resetChain bool

	resetFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "chain, c",
			Usage:       "also reset every timer reachable through links",
			Destination: &resetChain,
		},
	}
)

// addParams builds the create request from the add flags.
func addParams(name string) (tcommon.CreateParams, error) {
	p := tcommon.CreateParams{
		Name:    name,
		Hours:   addHours,
		Minutes: addMinutes,
		Seconds: addSeconds,
		Sound:   addSound,
	}
	if addDuration != "" {
		d, err := time.ParseDuration(addDuration)
		if err != nil {
			return p, err
		}
		p.Hours, p.Minutes, p.Seconds = 0, 0, 0
		p.TotalSeconds = int(d / time.Second)
	}
	return p, nil
}

func add(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" || name == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	params, err := addParams(name)
	if err != nil {
		common.PrintRuntimeErr(ctx, "add", "parse_duration", err)
		return nil
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "add", "new_client", err)
		return nil
	}
	defer client.Close()
	cctx, cancel := callContext()
	defer cancel()

	var prev timerlib.Projection
	if addThen != "" {
		prev, err = lookupTimer(cctx, client, addThen)
		if err != nil {
			common.PrintRuntimeErr(ctx, "add", "resolve_after", err)
			return nil
		}
	}
	p, err := client.Create(cctx, params)
	if err != nil {
		common.PrintRuntimeErr(ctx, "add", "create", err)
		return nil
	}
	if addThen != "" {
		if _, err := client.SetLink(cctx, prev.ID, p.ID); err != nil {
			common.PrintRuntimeErr(ctx, "add", "link", err)
			return nil
		}
	}
	if addStart {
		if p, err = client.Start(cctx, p.ID); err != nil {
			common.PrintRuntimeErr(ctx, "add", "start", err)
			return nil
		}
	}
	fmt.Printf("Created %s\n", describe(*p))
	return nil
}

// timerAction resolves the first argument and applies fn to it.
func timerAction(name, verb string, fn func(c *timercli.Client, id string) (*timerlib.Projection, error)) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		ref := ctx.Args().First()
		if ref == "" || ref == "help" {
			return cli.ShowCommandHelp(ctx, ctx.Command.Name)
		}
		client, err := newClient()
		if err != nil {
			common.PrintRuntimeErr(ctx, name, "new_client", err)
			return nil
		}
		defer client.Close()
		cctx, cancel := callContext()
		defer cancel()
		t, err := lookupTimer(cctx, client, ref)
		if err != nil {
			common.PrintRuntimeErr(ctx, name, "resolve", err)
			return nil
		}
		p, err := fn(client, t.ID)
		if err != nil {
			common.PrintRuntimeErr(ctx, name, name, err)
			return nil
		}
		fmt.Printf("%s %s\n", verb, describe(*p))
		return nil
	}
}

var (
	start = timerAction("start", "Started", func(c *timercli.Client, id string) (*timerlib.Projection, error) {
		cctx, cancel := callContext()
		defer cancel()
		return c.Start(cctx, id)
	})
	pause = timerAction("pause", "Paused", func(c *timercli.Client, id string) (*timerlib.Projection, error) {
		cctx, cancel := callContext()
		defer cancel()
		return c.Pause(cctx, id)
	})
	unlink = timerAction("unlink", "Unlinked", func(c *timercli.Client, id string) (*timerlib.Projection, error) {
		cctx, cancel := callContext()
		defer cancel()
		return c.Unlink(cctx, id)
	})
)

func reset(ctx *cli.Context) error {
	ref := ctx.Args().First()
	if ref == "" || ref == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "reset", "new_client", err)
		return nil
	}
	defer client.Close()
	cctx, cancel := callContext()
	defer cancel()
	t, err := lookupTimer(cctx, client, ref)
	if err != nil {
		common.PrintRuntimeErr(ctx, "reset", "resolve", err)
		return nil
	}
	if !resetChain {
		p, err := client.Reset(cctx, t.ID)
		if err != nil {
			common.PrintRuntimeErr(ctx, "reset", "reset", err)
			return nil
		}
		fmt.Printf("Reset %s\n", describe(*p))
		return nil
	}
	touched, err := client.ResetChain(cctx, t.ID)
	if err != nil {
		common.PrintRuntimeErr(ctx, "reset", "reset_chain", err)
		return nil
	}
	for _, p := range touched {
		fmt.Printf("Reset %s\n", describe(p))
	}
	return nil
}

func link(ctx *cli.Context) error {
	from, to := ctx.Args().Get(0), ctx.Args().Get(1)
	if from == "" || to == "" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "link", "new_client", err)
		return nil
	}
	defer client.Close()
	cctx, cancel := callContext()
	defer cancel()
	timers, err := client.List(cctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "link", "list", err)
		return nil
	}
	src, err := resolveTimer(timers, from)
	if err != nil {
		common.PrintRuntimeErr(ctx, "link", "resolve", err)
		return nil
	}
	dst, err := resolveTimer(timers, to)
	if err != nil {
		common.PrintRuntimeErr(ctx, "link", "resolve", err)
		return nil
	}
	p, err := client.SetLink(cctx, src.ID, dst.ID)
	if err != nil {
		common.PrintRuntimeErr(ctx, "link", "set_link", err)
		return nil
	}
	fmt.Printf("Linked %s\n", describe(*p))
	return nil
}

func remove(ctx *cli.Context) error {
	ref := ctx.Args().First()
	if ref == "" || ref == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "delete", "new_client", err)
		return nil
	}
	defer client.Close()
	cctx, cancel := callContext()
	defer cancel()
	t, err := lookupTimer(cctx, client, ref)
	if err != nil {
		common.PrintRuntimeErr(ctx, "delete", "resolve", err)
		return nil
	}
	if err := client.Delete(cctx, t.ID); err != nil {
		common.PrintRuntimeErr(ctx, "delete", "delete", err)
		return nil
	}
	fmt.Printf("Deleted %s (%s)\n", t.Name, shortID(t.ID))
	return nil
}

// moveOrder returns ids with id moved to the 1-based position pos, clamped
// to the list bounds.
func moveOrder(ids []string, id string, pos int) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	idx := pos - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(out) {
		idx = len(out)
	}
	out = append(out, "")
	copy(out[idx+1:], out[idx:])
	out[idx] = id
	return out
}

func move(ctx *cli.Context) error {
	ref, posArg := ctx.Args().Get(0), ctx.Args().Get(1)
	if ref == "" || posArg == "" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	pos, err := strconv.Atoi(posArg)
	if err != nil {
		common.PrintRuntimeErr(ctx, "move", "parse_position", err)
		return nil
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "move", "new_client", err)
		return nil
	}
	defer client.Close()
	cctx, cancel := callContext()
	defer cancel()
	timers, err := client.List(cctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "move", "list", err)
		return nil
	}
	t, err := resolveTimer(timers, ref)
	if err != nil {
		common.PrintRuntimeErr(ctx, "move", "resolve", err)
		return nil
	}
	ids := make([]string, len(timers))
	for i, p := range timers {
		ids[i] = p.ID
	}
	if err := client.Reorder(cctx, moveOrder(ids, t.ID, pos)); err != nil {
		common.PrintRuntimeErr(ctx, "move", "reorder", err)
		return nil
	}
	fmt.Printf("Moved %s to position %d\n", t.Name, min(max(pos, 1), len(ids)))
	return nil
}
