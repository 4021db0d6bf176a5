/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	txnzLimit int
)

// NewDebugCommand creates new DebugCommand.
func NewDebugCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "show shardd runtime info, including txnz/backendz/configz",
	}
	cmd.AddCommand(NewDebugTxnzCommand())
	cmd.AddCommand(NewDebugBackendzCommand())
	cmd.AddCommand(NewDebugConfigzCommand())
	addAPIFlag(cmd)
	return cmd
}

// NewDebugTxnzCommand is used to show the live sessions.
func NewDebugTxnzCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "txnz",
		Short: "show the live sessions",
		RunE:  debugTxnzCommand,
	}
	cmd.Flags().IntVar(&txnzLimit, "limit", 100, "--limit=[n]")
	return cmd
}

func debugTxnzCommand(cmd *cobra.Command, args []string) error {
	return getAndPrint(cmd, fmt.Sprintf("/v1/debug/txnz/%d", txnzLimit))
}

// NewDebugBackendzCommand is used to show backend info.
func NewDebugBackendzCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backendz",
		Short: "show the backend pools",
		RunE:  debugBackendzCommand,
	}
	return cmd
}

func debugBackendzCommand(cmd *cobra.Command, args []string) error {
	return getAndPrint(cmd, "/v1/debug/backendz")
}

// NewDebugConfigzCommand is used to show config.
func NewDebugConfigzCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configz",
		Short: "show the config",
		RunE:  debugConfigzCommand,
	}
	return cmd
}

func debugConfigzCommand(cmd *cobra.Command, args []string) error {
	return getAndPrint(cmd, "/v1/debug/configz")
}
