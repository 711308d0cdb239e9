// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/microsoft/Quantum/pkg/oracle"
	"github.com/microsoft/Quantum/pkg/synth"
)

// Version is filled when set at link time (-ldflags "-X"), but *not* when
// installing via "go install".
var Version string

// rootCmd is the compiler itself: it reads a QIR module, synthesizes every
// discovered oracle pair, and writes the module back out.
var rootCmd = &cobra.Command{
	Use:   "oracle-compiler INPUT OUTPUT",
	Short: "A classical-to-quantum oracle compiler for QIR modules.",
	Long: `Reads a QIR module, pairs classical Boolean functions with their empty
quantum operations by name, synthesizes a reversible circuit for each pair and
emits it into the operation body.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if GetFlag(cmd, "version") {
			return nil
		}
		//
		return cobra.ExactArgs(2)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			printVersion()
			return
		}
		//
		configureLogging(GetFlag(cmd, "verbose"))
		//
		module, err := oracle.ParseModule(args[0])
		if err != nil {
			log.Error(err)
			os.Exit(2)
		}
		//
		reports, err := oracle.Compile(module, synth.Config{})
		if err != nil {
			log.Error(err)
			os.Exit(1)
		}
		//
		if err := oracle.WriteModule(module, args[1]); err != nil {
			log.Error(err)
			os.Exit(1)
		}
		//
		if report := GetString(cmd, "report"); report != "" {
			writeReport(reports, report)
		}
	},
}

func printVersion() {
	fmt.Print("oracle-compiler ")
	//
	if Version != "" {
		// Set at link time
		fmt.Printf("%s", Version)
	} else if info, ok := debug.ReadBuildInfo(); ok {
		// Built via "go install"
		fmt.Printf("%s", info.Main.Version)
	} else {
		// Unknown, perhaps "go run"
		fmt.Printf("(unknown version)")
	}
	//
	fmt.Println()
}

// Execute adds all child commands to the root command and sets flags
// appropriately.  This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.Flags().String("report", "", "write a JSON synthesis report to the given file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}
