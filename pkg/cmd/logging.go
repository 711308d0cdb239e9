// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// prefixFormatter renders log entries in the compiler's diagnostic format:
// informational lines as "[i] …" and errors as "[e] …", all on standard
// output.
type prefixFormatter struct{}

func (prefixFormatter) Format(entry *log.Entry) ([]byte, error) {
	prefix := "[i]"
	if entry.Level <= log.ErrorLevel {
		prefix = "[e]"
	}
	//
	return []byte(fmt.Sprintf("%s %s\n", prefix, entry.Message)), nil
}

// configureLogging routes diagnostics to stdout with the [i]/[e] prefixes.
func configureLogging(verbose bool) {
	log.SetOutput(os.Stdout)
	log.SetFormatter(prefixFormatter{})
	//
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}
