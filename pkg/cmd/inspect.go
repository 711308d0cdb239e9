// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package cmd

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/microsoft/Quantum/pkg/oracle"
	"github.com/microsoft/Quantum/pkg/synth"
	"github.com/microsoft/Quantum/pkg/xag"
)

// inspectCmd analyzes a module without emitting anything: it shows, for each
// discovered pair, the network statistics and the abstract gate structure
// the writer would emit.
var inspectCmd = &cobra.Command{
	Use:   "inspect INPUT",
	Short: "analyze oracle pairs without modifying the module.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(GetFlag(cmd, "verbose"))
		//
		module, err := oracle.ParseModule(args[0])
		if err != nil {
			log.Error(err)
			os.Exit(2)
		}
		//
		reports, networks, err := oracle.Analyze(module, synth.Config{})
		if err != nil {
			log.Error(err)
			os.Exit(1)
		}
		//
		width := terminalWidth()
		//
		for i, report := range reports {
			fmt.Printf("%s\n", report.Operation)
			fmt.Printf("  inputs %d, outputs %d, AND gates %d (from %d)\n",
				report.Inputs, report.Outputs, report.AndsAfter, report.AndsBefore)
			printNetwork(networks[i], width)
		}
	},
}

// terminalWidth returns the column budget for wrapped listings, falling back
// to 80 off a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		return w
	}
	//
	return 80
}

// printNetwork lists the AND gates and outputs of an abstract network with
// their linear fanins, wrapped to the given width.
func printNetwork(axag *xag.AbstractNetwork, width int) {
	for i, n := range axag.AndNodes() {
		fanin := axag.Fanins(n)
		line := fmt.Sprintf("  anc[%d] = AND(%s, %s)", i,
			faninList(axag, fanin[0]), faninList(axag, fanin[1]))
		printWrapped(line, width)
	}
	//
	for i, po := range axag.Outputs() {
		line := fmt.Sprintf("  out[%d] = %s", i, faninList(axag, po.Node()))
		if po.IsComplemented() {
			line += " (complemented)"
		}
		//
		printWrapped(line, width)
	}
}

func faninList(axag *xag.AbstractNetwork, n xag.Node) string {
	fanin := axag.LinearFanin(n)
	if len(fanin) == 0 {
		return "false"
	}
	//
	names := make([]string, len(fanin))
	for i, f := range fanin {
		names[i] = fmt.Sprintf("n%d", f)
	}
	//
	if len(names) == 1 {
		return names[0]
	}
	//
	return "xor(" + strings.Join(names, ", ") + ")"
}

// printWrapped breaks a long line at the column budget, indenting
// continuations.
func printWrapped(line string, width int) {
	for len(line) > width {
		cut := strings.LastIndex(line[:width], " ")
		if cut <= 0 {
			break
		}
		//
		fmt.Println(line[:cut])
		line = "      " + strings.TrimLeft(line[cut:], " ")
	}
	//
	fmt.Println(line)
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
