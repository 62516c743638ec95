package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const (
	helpQuotaCmd        = "Gluster Volume Quota Management"
	helpQuotaEnableCmd  = "enable quota enforcement on <VOLNAME>"
	helpQuotaDisableCmd = "disable quota enforcement on <VOLNAME>"
	helpQuotaListCmd    = "list quotas configured on <VOLNAME>"
	helpQuotaLimitCmd   = "set a usage limit on a directory of <VOLNAME>"
	helpQuotaRemoveCmd  = "remove the usage limit on a directory of <VOLNAME>"
)

func init() {
	quotaCmd.AddCommand(quotaEnableCmd)
	quotaCmd.AddCommand(quotaDisableCmd)
	quotaCmd.AddCommand(quotaListCmd)
	quotaCmd.AddCommand(quotaLimitCmd)
	quotaCmd.AddCommand(quotaRemoveCmd)
	volumeCmd.AddCommand(quotaCmd)
}

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: helpQuotaCmd,
}

var quotaEnableCmd = &cobra.Command{
	Use:   "enable <VOLNAME>",
	Short: helpQuotaEnableCmd,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		volname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		if err := orch.EnableQuota(ctx, volname); err != nil {
			failure(fmt.Sprintf("Quota enable on volume %s failed", volname), err)
		}
		fmt.Printf("Quota enabled on volume %s\n", volname)
	},
}

var quotaDisableCmd = &cobra.Command{
	Use:   "disable <VOLNAME>",
	Short: helpQuotaDisableCmd,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		volname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		if err := orch.DisableQuota(ctx, volname); err != nil {
			failure(fmt.Sprintf("Quota disable on volume %s failed", volname), err)
		}
		fmt.Printf("Quota disabled on volume %s\n", volname)
	},
}

var quotaListCmd = &cobra.Command{
	Use:   "list <VOLNAME>",
	Short: helpQuotaListCmd,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		volname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		quotas, err := orch.ListQuotas(ctx, volname)
		if err != nil {
			failure(fmt.Sprintf("Quota list on volume %s failed", volname), err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Path", "Limit", "Used"})
		for _, q := range quotas {
			table.Append([]string{q.Path, humanize.Bytes(q.Limit), humanize.Bytes(q.Used)})
		}
		table.Render()
	},
}

var quotaLimitCmd = &cobra.Command{
	Use:   "limit <VOLNAME> <PATH> <SIZE>",
	Short: helpQuotaLimitCmd,
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		volname, path := args[0], args[1]
		limit, err := humanize.ParseBytes(args[2])
		if err != nil {
			failure(fmt.Sprintf("Invalid quota size %q", args[2]), nil)
		}

		ctx, cancel := opCtx()
		defer cancel()

		if err := orch.AddQuota(ctx, volname, path, limit); err != nil {
			failure(fmt.Sprintf("Quota limit on volume %s failed", volname), err)
		}
		fmt.Printf("Quota of %s set on %s of volume %s\n", humanize.Bytes(limit), path, volname)
	},
}

var quotaRemoveCmd = &cobra.Command{
	Use:   "remove <VOLNAME> <PATH>",
	Short: helpQuotaRemoveCmd,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		volname, path := args[0], args[1]
		ctx, cancel := opCtx()
		defer cancel()

		if err := orch.RemoveQuota(ctx, volname, path); err != nil {
			failure(fmt.Sprintf("Quota remove on volume %s failed", volname), err)
		}
		fmt.Printf("Quota removed from %s of volume %s\n", path, volname)
	},
}
