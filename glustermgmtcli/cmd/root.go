package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/gluster/glustermgmt/pkg/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd represents main command
var RootCmd = &cobra.Command{
	Use:   "glustermgmt",
	Short: "Gluster cluster management client",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		err := logging.Init(flagLogDir, flagLogFile, flagLogLevel)
		if err != nil {
			fmt.Println("Error initializing log file ", err)
		}
		initOrchestrator()
	},
}

var (
	flagNodes        []string
	flagBinary       string
	flagLogDir       string
	flagLogFile      string
	flagLogLevel     string
	flagTimeout      time.Duration
	flagPollInterval time.Duration
	verbose          bool
)

const (
	defaultLogLevel = "INFO"
)

func init() {
	// Global flags, applicable for all sub commands
	RootCmd.PersistentFlags().StringSliceVar(&flagNodes, "nodes", []string{""},
		"Cluster nodes to run management commands against, tried in order")
	RootCmd.PersistentFlags().StringVar(&flagBinary, "gluster-binary", "gluster",
		"Path to the gluster command line binary")
	RootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 2*time.Minute,
		"Overall timeout for a single operation, confirmation included")
	RootCmd.PersistentFlags().DurationVar(&flagPollInterval, "poll-interval", time.Second,
		"Delay between operation confirmation checks")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Log options
	RootCmd.PersistentFlags().StringVar(&flagLogDir, logging.DirFlag, "", logging.DirHelp)
	RootCmd.PersistentFlags().StringVar(&flagLogFile, logging.FileFlag, "stderr", logging.FileHelp)
	RootCmd.PersistentFlags().StringVar(&flagLogLevel, logging.LevelFlag, defaultLogLevel, logging.LevelHelp)

	viper.SetEnvPrefix("GLUSTERMGMT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}
