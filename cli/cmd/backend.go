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

	"github.com/spf13/cobra"
)

type backendParams struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	User           string `json:"user"`
	Password       string `json:"password"`
	Database       string `json:"database"`
	MaxConnections int    `json:"max-connections"`
	ReadOnly       bool   `json:"read-only"`
	Driver         string `json:"driver"`
	AcquireTimeout int    `json:"acquire-timeout"`
}

var (
	backendFlags = backendParams{}
)

// NewBackendCommand creates new BackendCommand.
func NewBackendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backend",
		Short: "add or remove backends",
	}
	cmd.AddCommand(NewBackendAddCommand())
	cmd.AddCommand(NewBackendRemoveCommand())
	addAPIFlag(cmd)
	return cmd
}

// NewBackendAddCommand is used to add a backend.
func NewBackendAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "add a backend",
		RunE:  backendAddCommandFn,
	}
	flags := cmd.Flags()
	flags.StringVar(&backendFlags.Name, "name", "", "--name=[backend name]")
	flags.StringVar(&backendFlags.Address, "address", "", "--address=[host:port]")
	flags.StringVar(&backendFlags.User, "user", "", "--user=[user]")
	flags.StringVar(&backendFlags.Password, "password", "", "--password=[password]")
	flags.StringVar(&backendFlags.Database, "database", "", "--database=[default db]")
	flags.IntVar(&backendFlags.MaxConnections, "max-connections", 1024, "--max-connections=[n]")
	flags.BoolVar(&backendFlags.ReadOnly, "read-only", false, "--read-only=[true|false]")
	flags.StringVar(&backendFlags.Driver, "driver", "", "--driver=[mysqlstack|database/sql]")
	flags.IntVar(&backendFlags.AcquireTimeout, "acquire-timeout", 0, "--acquire-timeout=[ms]")
	return cmd
}

func backendAddCommandFn(cmd *cobra.Command, args []string) error {
	resp, cleanup, err := xbase.HTTPPost(apiURL("/v1/radon/backend"), &backendFlags)
	return checkAndPrint(cmd, resp, cleanup, err)
}

// NewBackendRemoveCommand is used to remove a backend.
func NewBackendRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [name]",
		Short: "remove a backend",
		Args:  cobra.ExactArgs(1),
		RunE:  backendRemoveCommandFn,
	}
	return cmd
}

func backendRemoveCommandFn(cmd *cobra.Command, args []string) error {
	resp, cleanup, err := xbase.HTTPDelete(apiURL("/v1/radon/backend/" + args[0]))
	return checkAndPrint(cmd, resp, cleanup, err)
}
