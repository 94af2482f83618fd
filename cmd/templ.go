package cmd

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}{{if .VisibleFlags}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`

const DESCRIPTION = `
warptimer keeps named countdown timers in a background daemon. Timers
can be chained so that one finishing starts the next, and each plays
a sound when it completes. Timers survive restarts of the daemon.
`

const (
	AddDescription = `The add command creates a stopped timer. The duration is
given with the hours, minutes and seconds flags or as a
Go duration string.

Example:
        warptimer add "Tea" -m 3
        warptimer add "Stretch" --duration 1h30m --sound chime

`
	ListDescription = `The list command displays every timer in display order
with its id, remaining time, state and chain link.

Example:
        warptimer list

`
	StartDescription = `The start command starts or resumes a timer. A timer is
addressed by its id, a unique id prefix or its name.

Example:
        warptimer start tea

`
	ResetDescription = `The reset command stops a timer and restores its full
duration. With --chain every timer reachable through
its links is reset too.

Example:
        warptimer reset tea --chain

`
	LinkDescription = `The link command makes the second timer start
automatically when the first one completes. A timer may
link to itself to repeat.

Example:
        warptimer link tea biscuits

`
	MoveDescription = `The move command moves a timer to a new 1-based position
in the display order.

Example:
        warptimer move biscuits 1

`
	WatchDescription = `The watch command shows live progress bars for every timer
until interrupted. While watching, the daemon ticks at
its fast cadence. With --web the command attaches to the
websocket endpoint as a viewer, using the secret from
WARPTIMER_RPC_SECRET.

Example:
        warptimer watch
        warptimer watch --web

`
	DaemonDescription = `The daemon command runs the timer daemon in the foreground.
Other commands start it automatically when needed.

Example:
        warptimer daemon

`
)
