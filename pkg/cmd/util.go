// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package cmd

import (
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"github.com/microsoft/Quantum/pkg/oracle"
)

// GetFlag reads an expected boolean flag, or prints the error and exits with
// status 2 if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// GetString reads an expected string flag, or prints the error and exits with
// status 2 if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// writeReport serializes the per-pair synthesis report as JSON.
func writeReport(reports []oracle.PairReport, filename string) {
	bytes, err := json.Marshal(reports)
	if err == nil {
		err = os.WriteFile(filename, bytes, 0o644)
	}
	//
	if err != nil {
		fmt.Printf("[e] error writing report: %s\n", err)
		os.Exit(1)
	}
}
