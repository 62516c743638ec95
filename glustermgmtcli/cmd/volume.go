package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/gluster/glustermgmt/pkg/api"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	helpVolumeCmd       = "Gluster Volume Management"
	helpVolumeInfoCmd   = "get volume info"
	helpVolumeListCmd   = "list all volumes"
	helpVolumeStatusCmd = "get volume status"
	helpVolumeStartCmd  = "start volume specified by <VOLNAME>"
	helpVolumeStopCmd   = "stop volume specified by <VOLNAME>"
	helpVolumeDeleteCmd = "delete volume specified by <VOLNAME>"
	helpVolumeSetCmd    = "set volume options"
	helpVolumeExpandCmd = "add bricks to volume specified by <VOLNAME>"
	helpVolumeShrinkCmd = "remove bricks from volume specified by <VOLNAME>"
)

var (
	flagStartForce   bool
	flagStopForce    bool
	flagExpandForce  bool
	flagExpandReplic int
	flagShrinkReplic int
)

func init() {
	volumeCmd.AddCommand(volumeInfoCmd)
	volumeCmd.AddCommand(volumeListCmd)
	volumeCmd.AddCommand(volumeStatusCmd)

	volumeStartCmd.Flags().BoolVarP(&flagStartForce, "force", "f", false, "Force")
	volumeCmd.AddCommand(volumeStartCmd)

	volumeStopCmd.Flags().BoolVarP(&flagStopForce, "force", "f", false, "Force")
	volumeCmd.AddCommand(volumeStopCmd)

	volumeCmd.AddCommand(volumeDeleteCmd)
	volumeCmd.AddCommand(volumeSetCmd)

	volumeExpandCmd.Flags().IntVar(&flagExpandReplic, "replica", 0, "New Replica Count")
	volumeExpandCmd.Flags().BoolVarP(&flagExpandForce, "force", "f", false, "Force")
	volumeCmd.AddCommand(volumeExpandCmd)

	volumeShrinkCmd.Flags().IntVar(&flagShrinkReplic, "replica", 0, "New Replica Count")
	volumeCmd.AddCommand(volumeShrinkCmd)

	RootCmd.AddCommand(volumeCmd)
}

var volumeCmd = &cobra.Command{
	Use:   "volume",
	Short: helpVolumeCmd,
}

var volumeInfoCmd = &cobra.Command{
	Use:   "info [<VOLNAME>]",
	Short: helpVolumeInfoCmd,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := opCtx()
		defer cancel()

		snap, err := orch.Refresh(ctx)
		if err != nil {
			failure("Volume info failed", err)
		}

		vols := snap.Volumes
		if len(args) == 1 {
			v := snap.Volume(args[0])
			if v == nil {
				failure(fmt.Sprintf("Volume %s not found", args[0]), nil)
			}
			vols = []api.Volume{*v}
		}
		for _, v := range vols {
			volumeInfoDisplay(&v)
		}
	},
}

func volumeInfoDisplay(v *api.Volume) {
	fmt.Println()
	fmt.Println("Volume Name:", v.Name)
	fmt.Println("Type:", v.Type)
	fmt.Println("Volume ID:", v.ID)
	fmt.Println("State:", v.State)
	fmt.Println("Transport-type:", v.Transport)
	fmt.Println("Bricks:")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Brick", "Status", "Port", "Pid"})
	for _, b := range v.Bricks {
		table.Append([]string{b.String(), b.Status.String(), formatPort(b.Port), formatPID(b.Pid)})
	}
	table.Render()

	if len(v.Options) > 0 {
		fmt.Println("Options:")
		table = tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Name", "Value"})
		for _, k := range sortedOptionKeys(v.Options) {
			table.Append([]string{k, v.Options[k]})
		}
		table.Render()
	}
}

var volumeListCmd = &cobra.Command{
	Use:   "list",
	Short: helpVolumeListCmd,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := opCtx()
		defer cancel()

		names, err := orch.VolumeNames(ctx)
		if err != nil {
			failure("Volume list failed", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

var volumeStatusCmd = &cobra.Command{
	Use:   "status <VOLNAME>",
	Short: helpVolumeStatusCmd,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := opCtx()
		defer cancel()

		snap, err := orch.Refresh(ctx)
		if err != nil {
			failure("Volume status failed", err)
		}
		v := snap.Volume(args[0])
		if v == nil {
			failure(fmt.Sprintf("Volume %s not found", args[0]), nil)
		}

		fmt.Println("Volume:", v.Name)
		fmt.Println("State:", v.State)
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Brick", "Online", "Port", "Pid"})
		for _, b := range v.Bricks {
			table.Append([]string{
				b.String(),
				formatBoolYesNo(b.Status == api.BrickOnline),
				formatPort(b.Port),
				formatPID(b.Pid),
			})
		}
		table.Render()
	},
}

var volumeStartCmd = &cobra.Command{
	Use:   "start <VOLNAME>",
	Short: helpVolumeStartCmd,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		volname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		if err := orch.StartVolume(ctx, volname, flagStartForce); err != nil {
			if verbose {
				log.WithFields(log.Fields{
					"volume": volname,
					"error":  err.Error(),
				}).Error("volume start failed")
			}
			failure(fmt.Sprintf("Volume %s start failed", volname), err)
		}
		fmt.Printf("Volume %s started successfully\n", volname)
	},
}

var volumeStopCmd = &cobra.Command{
	Use:   "stop <VOLNAME>",
	Short: helpVolumeStopCmd,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		volname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		if err := orch.StopVolume(ctx, volname, flagStopForce); err != nil {
			if verbose {
				log.WithFields(log.Fields{
					"volume": volname,
					"error":  err.Error(),
				}).Error("volume stop failed")
			}
			failure(fmt.Sprintf("Volume %s stop failed", volname), err)
		}
		fmt.Printf("Volume %s stopped successfully\n", volname)
	},
}

var volumeDeleteCmd = &cobra.Command{
	Use:   "delete <VOLNAME>",
	Short: helpVolumeDeleteCmd,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		volname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		if err := orch.DeleteVolume(ctx, volname); err != nil {
			if verbose {
				log.WithFields(log.Fields{
					"volume": volname,
					"error":  err.Error(),
				}).Error("volume delete failed")
			}
			failure(fmt.Sprintf("Volume %s delete failed", volname), err)
		}
		fmt.Printf("Volume %s deleted successfully\n", volname)
	},
}

var volumeSetCmd = &cobra.Command{
	Use:   "set <VOLNAME> <OPTION> <VALUE> [<OPTION> <VALUE>]...",
	Short: helpVolumeSetCmd,
	Args:  cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		volname := args[0]
		pairs := args[1:]
		if len(pairs)%2 != 0 {
			failure("Options must be in <OPTION> <VALUE> pairs", nil)
		}
		options := make(map[string]string, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			options[pairs[i]] = pairs[i+1]
		}

		ctx, cancel := opCtx()
		defer cancel()

		if err := orch.SetVolumeOptions(ctx, volname, options); err != nil {
			failure(fmt.Sprintf("Volume %s option set failed", volname), err)
		}
		fmt.Printf("Options set successfully on volume %s\n", volname)
	},
}

var volumeExpandCmd = &cobra.Command{
	Use:   "add-brick <VOLNAME> <BRICK> [<BRICK>]...",
	Short: helpVolumeExpandCmd,
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		volname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		err := orch.ExpandVolume(ctx, volname, args[1:], flagExpandReplic, flagExpandForce)
		if err != nil {
			failure(fmt.Sprintf("Volume %s add-brick failed", volname), err)
		}
		fmt.Printf("Bricks added successfully to volume %s\n", volname)
	},
}

var volumeShrinkCmd = &cobra.Command{
	Use:   "remove-brick <VOLNAME> <BRICK> [<BRICK>]...",
	Short: helpVolumeShrinkCmd,
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		volname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		if err := orch.ShrinkVolume(ctx, volname, args[1:], flagShrinkReplic); err != nil {
			failure(fmt.Sprintf("Volume %s remove-brick failed", volname), err)
		}
		fmt.Printf("Bricks removed successfully from volume %s\n", volname)
	},
}

func formatBoolYesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatPID(pid int) string {
	if pid == 0 {
		return ""
	}
	return strconv.Itoa(pid)
}

func formatPort(port int) string {
	if port == 0 {
		return "N/A"
	}
	return strconv.Itoa(port)
}

func sortedOptionKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
