// SPDX-License-Identifier: MIT

package main

import (
	cmd "aer-cli/cmd/aer"
)

func main() {
	cmd.Execute()
}
