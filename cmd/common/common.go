// Package common provides shared helpers for the CLI commands: progress
// bars, error reporting, help display and text formatting.
package common

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

// VersionCmdStr holds the formatted version string displayed by the version command.
// It is populated at runtime by the Execute function with build-time information.
var VersionCmdStr string

var (
	showAppHelpAndExit = cli.ShowAppHelpAndExit
	showCommandHelp    = cli.ShowCommandHelp
)

// TimerBar is a progress bar following one timer. The bar fills as the
// countdown runs; it never completes on its own so a chained timer that
// restarts keeps its bar.
type TimerBar struct {
	bar  *mpb.Bar
	mu   sync.Mutex
	proj timerlib.Projection
}

// InitTimerBar adds a bar for proj to p. Lower priority values are drawn first.
func InitTimerBar(p *mpb.Progress, proj timerlib.Projection, priority int) *TimerBar {
	barStyle := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")
	tb := &TimerBar{proj: proj}
	name := Truncate(proj.Name, 20)
	tb.bar = p.New(0,
		barStyle,
		mpb.BarPriority(priority),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: 21, C: decor.DindentRight}),
			decor.Any(func(decor.Statistics) string { return tb.Projection().Display }, decor.WC{W: 9}),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				p := tb.Projection()
				return fmt.Sprintf("%3.0f%% %s", p.ProgressPercentage, Status(p))
			}, decor.WC{W: 13, C: decor.DindentRight}),
		),
	)
	tb.Update(proj)
	return tb
}

// Update moves the bar to proj.
func (tb *TimerBar) Update(proj timerlib.Projection) {
	tb.mu.Lock()
	tb.proj = proj
	tb.mu.Unlock()
	total := int64(proj.TotalSeconds)
	if total <= 0 {
		total = 1
	}
	tb.bar.SetTotal(total, false)
	tb.bar.SetCurrent(total - int64(proj.RemainingSeconds))
}

// Projection returns the last projection the bar was updated with.
func (tb *TimerBar) Projection() timerlib.Projection {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.proj
}

// SetPriority changes the bar's drawing position.
func (tb *TimerBar) SetPriority(priority int) {
	tb.bar.SetPriority(priority)
}

// Current returns the elapsed seconds shown by the bar.
func (tb *TimerBar) Current() int64 {
	return tb.bar.Current()
}

// Abort removes the bar; drop also erases it from the output.
func (tb *TimerBar) Abort(drop bool) {
	tb.bar.Abort(drop)
}

// Status names the state of a timer: running, paused, done or ready.
func Status(p timerlib.Projection) string {
	switch {
	case p.IsRunning:
		return "running"
	case p.TotalSeconds > 0 && p.RemainingSeconds == 0:
		return "done"
	case p.RemainingSeconds < p.TotalSeconds:
		return "paused"
	}
	return "ready"
}

// Help displays help information for the application or a specific command.
// If no argument is provided or the argument is "help", it displays the
// application-level help and exits.
func Help(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" || arg == "help" {
		fmt.Printf("%s %s\n", ctx.App.Name, ctx.App.Version)
		showAppHelpAndExit(ctx, 0)
		return nil
	}
	err := showCommandHelp(ctx, arg)
	if err != nil {
		return err
	}
	return nil
}

// GetVersion prints the version string to stdout and returns nil.
func GetVersion(ctx *cli.Context) error {
	fmt.Println(VersionCmdStr)
	return nil
}

// PrintRuntimeErr formats and prints a runtime error message to stdout as
// "<app>: <cmd>[<action>]: <err>". The ctx parameter may be nil, in which
// case the application name is derived from os.Args[0].
func PrintRuntimeErr(ctx *cli.Context, cmd, action string, err error) {
	if err == nil {
		fmt.Println("err is nil", "[", cmd, "|", action, "]")
		return
	}
	var name string
	if ctx != nil {
		name = ctx.App.HelpName
	} else {
		name = os.Args[0]
	}
	fmt.Printf("%s: %s[%s]: %s\n", name, cmd, action, err.Error())
}

// PrintErrWithCmdHelp prints the error message followed by the current
// command's help text.
func PrintErrWithCmdHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(
		ctx,
		err,
		func() {
			err := showCommandHelp(ctx, ctx.Command.Name)
			if err != nil {
				fmt.Println(err.Error())
			}
		},
	)
}

// PrintErrWithHelp prints the error message followed by the application-level
// help text and exits with status code 1.
func PrintErrWithHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(
		ctx,
		err,
		func() {
			showAppHelpAndExit(ctx, 1)
		},
	)
}

func printErrWithCallback(ctx *cli.Context, err error, callback func()) error {
	if err == nil {
		return nil
	}
	estr := strings.ToLower(err.Error())
	if estr == "flag: help requested" {
		return Help(ctx)
	}
	if strings.Contains(estr, "-version") {
		return GetVersion(ctx)
	}
	fmt.Printf("%s: %s\n\n", ctx.App.HelpName, err.Error())
	callback()
	return nil
}

// UsageErrorCallback handles usage errors from the CLI framework. It is
// used as the OnUsageError callback for cli.App and cli.Command.
func UsageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if ctx.Command.Name != "" {
		return PrintErrWithCmdHelp(ctx, err)
	}
	return PrintErrWithHelp(ctx, err)
}

// Beaut centers a string within a field of width n by padding with spaces.
// If n minus the string length is odd, an extra space is appended at the end.
func Beaut(s string, n int) (b string) {
	n1 := utf8.RuneCountInString(s)
	x := n - n1
	if x <= 0 {
		return s
	}
	x1 := x / 2
	w := string(
		replic(' ', x1),
	)
	b = w
	b += s
	b += w
	if x%2 != 0 {
		b += " "
	}
	return
}

// Truncate shortens s to n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func replic[aT any](v aT, n int) []aT {
	a := make([]aT, n)
	for i := range a {
		a[i] = v
	}
	return a
}
