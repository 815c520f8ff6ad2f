// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/apigen/apigen/cmd/apigen"

func main() {
	cmd.Execute()
}
