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

	"github.com/radondb/shardkit/xbase"

	"github.com/spf13/cobra"
)

var (
	routeDatabase string

	tableDatabase   string
	tableShardType  string
	tableShardKey   string
	tablePartitions int
)

// NewRouteCommand creates new RouteCommand.
func NewRouteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route [query]",
		Short: "show the nodes a statement is routed to",
		Args:  cobra.ExactArgs(1),
		RunE:  routeCommandFn,
	}
	addAPIFlag(cmd)
	cmd.Flags().StringVar(&routeDatabase, "database", "", "--database=[db]")
	return cmd
}

func routeCommandFn(cmd *cobra.Command, args []string) error {
	type request struct {
		Database string `json:"database"`
		Query    string `json:"query"`
	}
	req := &request{Database: routeDatabase, Query: args[0]}
	resp, cleanup, err := xbase.HTTPPost(apiURL("/v1/shard/route"), req)
	return checkAndPrint(cmd, resp, cleanup, err)
}

// NewShardCommand creates new ShardCommand.
func NewShardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shard",
		Short: "manage the shard rules",
	}
	cmd.AddCommand(NewShardRulesCommand())
	cmd.AddCommand(NewShardReloadCommand())
	cmd.AddCommand(NewShardCreateCommand())
	cmd.AddCommand(NewShardDropCommand())
	addAPIFlag(cmd)
	return cmd
}

// NewShardRulesCommand is used to show the rules.
func NewShardRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "show the table rules",
		RunE:  shardRulesCommandFn,
	}
	return cmd
}

func shardRulesCommandFn(cmd *cobra.Command, args []string) error {
	return getAndPrint(cmd, "/v1/shard/rules")
}

// NewShardReloadCommand is used to reload the rule files.
func NewShardReloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reload",
		Short: "reload the table rules from the meta dir",
		RunE:  shardReloadCommandFn,
	}
	return cmd
}

func shardReloadCommandFn(cmd *cobra.Command, args []string) error {
	resp, cleanup, err := xbase.HTTPPost(apiURL("/v1/shard/reload"), nil)
	return checkAndPrint(cmd, resp, cleanup, err)
}

// NewShardCreateCommand is used to spread a new table over all backends.
func NewShardCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [table]",
		Short: "create the rule of a table over all backends",
		Args:  cobra.ExactArgs(1),
		RunE:  shardCreateCommandFn,
	}
	cmd.Flags().StringVar(&tableDatabase, "database", "", "--database=[db]")
	cmd.Flags().StringVar(&tableShardType, "shardtype", "HASH", "--shardtype=[HASH|MOD|GLOBAL|SINGLE]")
	cmd.Flags().StringVar(&tableShardKey, "shardkey", "", "--shardkey=[column]")
	cmd.Flags().IntVar(&tablePartitions, "partitions", 0, "--partitions=[8|16|32|64]")
	return cmd
}

func shardCreateCommandFn(cmd *cobra.Command, args []string) error {
	type request struct {
		Database   string `json:"database"`
		Table      string `json:"table"`
		ShardType  string `json:"shardtype"`
		ShardKey   string `json:"shardkey"`
		Partitions int    `json:"partitions"`
	}
	req := &request{
		Database:   tableDatabase,
		Table:      args[0],
		ShardType:  tableShardType,
		ShardKey:   tableShardKey,
		Partitions: tablePartitions,
	}
	resp, cleanup, err := xbase.HTTPPost(apiURL("/v1/shard/table"), req)
	return checkAndPrint(cmd, resp, cleanup, err)
}

// NewShardDropCommand is used to drop the rule of a table.
func NewShardDropCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drop [database] [table]",
		Short: "drop the rule of a table",
		Args:  cobra.ExactArgs(2),
		RunE:  shardDropCommandFn,
	}
	return cmd
}

func shardDropCommandFn(cmd *cobra.Command, args []string) error {
	resp, cleanup, err := xbase.HTTPDelete(apiURL(fmt.Sprintf("/v1/shard/table/%s/%s", args[0], args[1])))
	return checkAndPrint(cmd, resp, cleanup, err)
}
