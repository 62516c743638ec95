package cmd

import (
	"fmt"
	"strings"

	"github.com/gluster/glustermgmt/orchestrator"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	volumeCreateHelpShort = "Create a Gluster volume"
	volumeCreateHelpLong  = "Create a Gluster volume of the requested type using the provided bricks. By default creates distribute volumes, unless a specific volume type is requested by providing the relevant flags."
)

var (
	flagCreateReplicaCount  int
	flagCreateDisperseCount int
	flagCreateTransport     string
	flagCreateForce         bool
	flagCreateVolumeOptions []string

	volumeCreateCmd = &cobra.Command{
		Use:   "create <volname> <brick> [<brick>]...",
		Short: volumeCreateHelpShort,
		Long:  volumeCreateHelpLong,
		Args:  cobra.MinimumNArgs(2),
		Run:   volumeCreateCmdRun,
	}
)

func init() {
	volumeCreateCmd.Flags().IntVar(&flagCreateReplicaCount, "replica", 0, "Replica Count")
	volumeCreateCmd.Flags().IntVar(&flagCreateDisperseCount, "disperse", 0, "Disperse Count")
	volumeCreateCmd.Flags().StringVar(&flagCreateTransport, "transport", "", "Transport")
	volumeCreateCmd.Flags().BoolVar(&flagCreateForce, "force", false, "Force")
	volumeCreateCmd.Flags().StringSliceVar(&flagCreateVolumeOptions, "options", nil,
		"Volume options in the format option:value,option:value")

	volumeCmd.AddCommand(volumeCreateCmd)
}

func volumeCreateCmdRun(cmd *cobra.Command, args []string) {
	volname := args[0]

	options, err := parseOptionPairs(flagCreateVolumeOptions)
	if err != nil {
		failure("Invalid volume options", err)
	}

	req := orchestrator.CreateRequest{
		Name:          volname,
		Bricks:        args[1:],
		ReplicaCount:  flagCreateReplicaCount,
		DisperseCount: flagCreateDisperseCount,
		Transport:     flagCreateTransport,
		Options:       options,
		Force:         flagCreateForce,
	}

	ctx, cancel := opCtx()
	defer cancel()

	vol, err := orch.CreateVolume(ctx, req)
	if err != nil {
		if verbose {
			log.WithFields(log.Fields{
				"volume": volname,
				"error":  err.Error(),
			}).Error("volume creation failed")
		}
		failure("Volume creation failed", err)
	}
	fmt.Printf("%s Volume created successfully\n", vol.Name)
	fmt.Println("Volume ID: ", vol.ID)
}

func parseOptionPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	options := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, ":")
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("invalid option %q, expected option:value", pair)
		}
		options[key] = value
	}
	return options, nil
}
