package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"github.com/warpdl/warptimer/cmd/common"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "new_client", err)
		return nil
	}
	defer client.Close()
	cctx, cancel := callContext()
	defer cancel()
	client.CheckVersionMismatch(cctx, os.Stderr, currentBuildArgs.Version)
	timers, err := client.List(cctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "get_list", err)
		return nil
	}
	if len(timers) == 0 {
		fmt.Println("warptimer: no timers found")
		return nil
	}
	fmt.Println(renderTable(timers))
	return nil
}

// renderTable lays timers out in display order, one row each.
func renderTable(timers []timerlib.Projection) string {
	txt := "Here are your timers:"
	txt += "\n\n-------------------------------------------------------------------------------"
	txt += "\n|Num|         Name         |    ID    |   Left   |  Status  |       Next       |"
	txt += "\n|---|----------------------|----------|----------|----------|------------------|"
	for i, t := range timers {
		name := common.Truncate(t.Name, 20)
		next := common.Truncate(t.Chain, 16)
		txt += fmt.Sprintf("\n|%s| %s | %s | %s | %s | %s |",
			common.Beaut(fmt.Sprint(i+1), 3),
			common.Beaut(name, 20),
			common.Beaut(shortID(t.ID), 8),
			common.Beaut(t.Display, 8),
			common.Beaut(common.Status(t), 8),
			common.Beaut(next, 16),
		)
	}
	txt += "\n-------------------------------------------------------------------------------"
	return txt
}
