// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/hslink/hslink/cmd/hslink"

func main() {
	cmd.Execute()
}
