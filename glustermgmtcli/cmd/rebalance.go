package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const (
	helpRebalanceCmd       = "Gluster Rebalance"
	helpRebalanceStartCmd  = "Start rebalance session for gluster volume"
	helpRebalanceStatusCmd = "Status of rebalance session"
	helpRebalanceStopCmd   = "Stop rebalance session"
)

func init() {
	rebalanceCmd.AddCommand(rebalanceStartCmd)
	rebalanceCmd.AddCommand(rebalanceStatusCmd)
	rebalanceCmd.AddCommand(rebalanceStopCmd)

	volumeCmd.AddCommand(rebalanceCmd)
}

var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: helpRebalanceCmd,
}

var rebalanceStartCmd = &cobra.Command{
	Use:   "start <VOLNAME>",
	Short: helpRebalanceStartCmd,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		volname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		if _, err := orch.StartRebalance(ctx, volname); err != nil {
			failure(fmt.Sprintf("Rebalance start failed for volume %s", volname), err)
		}
		fmt.Printf("Rebalance started for volume %s\n", volname)
	},
}

var rebalanceStatusCmd = &cobra.Command{
	Use:   "status <VOLNAME>",
	Short: helpRebalanceStatusCmd,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		volname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		nodes, err := orch.Rebalance(volname).Status(ctx)
		if err != nil {
			failure(fmt.Sprintf("Rebalance status failed for volume %s", volname), err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Node", "Rebalanced", "Size", "Scanned", "Failures", "Skipped", "Status", "Run Time"})
		for _, n := range nodes {
			table.Append([]string{
				n.Node,
				strconv.FormatUint(n.Rebalanced, 10),
				humanize.Bytes(n.Size),
				strconv.FormatUint(n.Scanned, 10),
				strconv.FormatUint(n.Failures, 10),
				strconv.FormatUint(n.Skipped, 10),
				n.StateRaw,
				n.Runtime,
			})
		}
		table.Render()
	},
}

var rebalanceStopCmd = &cobra.Command{
	Use:   "stop <VOLNAME>",
	Short: helpRebalanceStopCmd,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		volname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		if err := orch.Rebalance(volname).Stop(ctx); err != nil {
			failure(fmt.Sprintf("Rebalance stop failed for volume %s", volname), err)
		}
		fmt.Printf("Rebalance stopped for volume %s\n", volname)
	},
}
