/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package cmd

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/radondb/shardkit/xbase"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	apiAddress string
)

func addAPIFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&apiAddress, "api", "127.0.0.1:8080", "--api=[host:port]")
}

func apiURL(path string) string {
	return "http://" + apiAddress + path
}

// getAndPrint prints the body of a get request.
func getAndPrint(cmd *cobra.Command, path string) error {
	resp, cleanup, err := xbase.HTTPGetResponse(apiURL(path))
	return checkAndPrint(cmd, resp, cleanup, err)
}

// checkAndPrint prints the body, a non-200 status is an error.
func checkAndPrint(cmd *cobra.Command, resp *http.Response, cleanup func(), err error) error {
	defer cleanup()
	if err != nil {
		return err
	}
	body := xbase.HTTPReadBody(resp)
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("api.response.status[%d].body[%s]", resp.StatusCode, body)
	}
	if body != "" {
		fmt.Fprintln(cmd.OutOrStdout(), body)
	}
	return nil
}

func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOutput(buf)
	root.SetArgs(args)

	_, err = root.ExecuteC()
	return buf.String(), err
}
