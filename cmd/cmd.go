package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
	"github.com/warpdl/warptimer/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "warptimer",
		HelpName:              "warptimer",
		Usage:                 "Chained countdown timers.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "warptimer <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:               "daemon",
				Usage:              "runs the timer daemon",
				Description:        DaemonDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             daemon,
				Flags:              daemonFlags,
			},
			{
				Name:   "stop-daemon",
				Usage:  "stops the running daemon",
				Action: stopDaemon,
			},
			{
				Name:                   "add",
				Aliases:                []string{"a"},
				Usage:                  "creates a timer",
				ArgsUsage:              "<name>",
				UsageText:              "add <name> [flags]",
				Description:            AddDescription,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				Action:                 add,
				Flags:                  addFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:               "list",
				Aliases:            []string{"l", "ls"},
				Usage:              "lists timers",
				Description:        ListDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             list,
			},
			{
				Name:               "start",
				Aliases:            []string{"s"},
				Usage:              "starts or resumes a timer",
				UsageText:          "start <timer>",
				Description:        StartDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             start,
			},
			{
				Name:               "pause",
				Aliases:            []string{"p"},
				Usage:              "pauses a timer",
				UsageText:          "pause <timer>",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             pause,
			},
			{
				Name:               "reset",
				Usage:              "resets a timer or its whole chain",
				UsageText:          "reset <timer> [--chain]",
				Description:        ResetDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             reset,
				Flags:              resetFlags,
			},
			{
				Name:               "link",
				Usage:              "starts one timer when another completes",
				UsageText:          "link <timer> <next timer>",
				Description:        LinkDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             link,
			},
			{
				Name:               "unlink",
				Usage:              "removes a timer's chain link",
				UsageText:          "unlink <timer>",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             unlink,
			},
			{
				Name:               "delete",
				Aliases:            []string{"rm"},
				Usage:              "deletes a timer",
				UsageText:          "delete <timer>",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             remove,
			},
			{
				Name:               "move",
				Aliases:            []string{"mv"},
				Usage:              "changes a timer's display position",
				UsageText:          "move <timer> <position>",
				Description:        MoveDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             move,
			},
			{
				Name:               "watch",
				Aliases:            []string{"w"},
				Usage:              "shows live progress bars",
				Description:        WatchDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             watch,
				Flags:              watchFlags,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of warptimer",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:      list,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
