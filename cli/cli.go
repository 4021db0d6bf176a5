/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package main

import (
	"fmt"
	"os"

	"github.com/radondb/shardkit/cli/cmd"

	"github.com/spf13/cobra"
)

const (
	cliName        = "shardcli"
	cliDescription = "A simple command line client for shardd"
)

var (
	rootCmd = &cobra.Command{
		Use:        cliName,
		Short:      cliDescription,
		SuggestFor: []string{"shardcli"},
	}
)

func init() {
	rootCmd.AddCommand(cmd.NewVersionCommand())
	rootCmd.AddCommand(cmd.NewPingCommand())
	rootCmd.AddCommand(cmd.NewConfigCommand())
	rootCmd.AddCommand(cmd.NewRouteCommand())
	rootCmd.AddCommand(cmd.NewShardCommand())
	rootCmd.AddCommand(cmd.NewBackendCommand())
	rootCmd.AddCommand(cmd.NewDebugCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
