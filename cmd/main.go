// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package main

import "github.com/microsoft/Quantum/pkg/cmd"

func main() {
	cmd.Execute()
}
