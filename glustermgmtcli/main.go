package main

import (
	"fmt"
	"os"

	"github.com/gluster/glustermgmt/glustermgmtcli/cmd"
)

func main() {
	cmd.RootCmd.SilenceErrors = true

	if err := cmd.RootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
