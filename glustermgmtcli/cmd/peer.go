package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	helpPeerCmd       = "Gluster Peer Management"
	helpPeerAddCmd    = "add peer specified by <HOSTNAME>"
	helpPeerRemoveCmd = "remove peer specified by <HOSTNAME>"
	helpPeerStatusCmd = "list status of all the peers in the pool"
)

func init() {
	peerCmd.AddCommand(peerAddCmd)
	peerCmd.AddCommand(peerRemoveCmd)
	peerCmd.AddCommand(peerStatusCmd)

	RootCmd.AddCommand(peerCmd)
}

var peerCmd = &cobra.Command{
	Use:   "peer",
	Short: helpPeerCmd,
}

var peerAddCmd = &cobra.Command{
	Use:   "add <HOSTNAME>",
	Short: helpPeerAddCmd,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hostname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		peer, err := orch.ProbePeer(ctx, hostname)
		if err != nil {
			if verbose {
				log.WithFields(log.Fields{
					"host":  hostname,
					"error": err.Error(),
				}).Error("peer add failed")
			}
			failure("Peer add failed", err)
		}
		fmt.Println("Peer add successful")
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Hostname", "State"})
		table.Append([]string{peer.ID.String(), peer.Hostname, peer.State.String()})
		table.Render()
	},
}

var peerRemoveCmd = &cobra.Command{
	Use:   "remove <HOSTNAME>",
	Short: helpPeerRemoveCmd,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hostname := args[0]
		ctx, cancel := opCtx()
		defer cancel()

		if err := orch.DetachPeer(ctx, hostname); err != nil {
			if verbose {
				log.WithFields(log.Fields{
					"host":  hostname,
					"error": err.Error(),
				}).Error("peer remove failed")
			}
			failure("Peer remove failed", err)
		}
		fmt.Println("Peer remove success")
	},
}

var peerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: helpPeerStatusCmd,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := opCtx()
		defer cancel()

		snap, err := orch.Refresh(ctx)
		if err != nil {
			failure("Peer status failed", err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Hostname", "State"})
		for _, p := range snap.Peers {
			state := p.State.String()
			if p.StateRaw != "" && verbose {
				state = p.StateRaw
			}
			table.Append([]string{p.ID.String(), p.Hostname, state})
		}
		table.Render()
	},
}
