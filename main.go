// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/ezn/cmd/ezn"

func main() {
	cmd.Execute()
}
