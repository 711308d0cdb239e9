// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package cmd

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixFormatter(t *testing.T) {
	tests := []struct {
		level    log.Level
		message  string
		expected string
	}{
		{log.InfoLevel, "process function f", "[i] process function f\n"},
		{log.DebugLevel, "cut rewriting", "[i] cut rewriting\n"},
		{log.ErrorLevel, "unsupported op code", "[e] unsupported op code\n"},
	}
	//
	for _, tc := range tests {
		entry := &log.Entry{Level: tc.level, Message: tc.message}
		out, err := prefixFormatter{}.Format(entry)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, string(out))
	}
}
