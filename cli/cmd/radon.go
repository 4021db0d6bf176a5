/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package cmd

import (
	"github.com/radondb/shardkit/xbase"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewPingCommand creates new PingCommand.
func NewPingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "ping every backend through shardd",
		RunE:  pingCommandFn,
	}
	addAPIFlag(cmd)
	return cmd
}

func pingCommandFn(cmd *cobra.Command, args []string) error {
	return getAndPrint(cmd, "/v1/radon/ping")
}

var (
	parallelCommit bool
	readOnly       bool
)

// NewConfigCommand creates new ConfigCommand.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "set the session defaults of shardd, only the given flags are changed",
		RunE:  configCommandFn,
	}
	addAPIFlag(cmd)
	cmd.Flags().BoolVar(&parallelCommit, "parallel-commit", false, "--parallel-commit=[true|false]")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "--read-only=[true|false]")
	return cmd
}

func configCommandFn(cmd *cobra.Command, args []string) error {
	body := map[string]bool{}
	if cmd.Flags().Changed("parallel-commit") {
		body["parallel-commit"] = parallelCommit
	}
	if cmd.Flags().Changed("read-only") {
		body["read-only"] = readOnly
	}
	if len(body) == 0 {
		return errors.New("config.nothing.to.set")
	}
	resp, cleanup, err := xbase.HTTPPut(apiURL("/v1/radon/config"), body)
	return checkAndPrint(cmd, resp, cleanup, err)
}
