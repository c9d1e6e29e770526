// Command ipcscan reports the highest IPC value found in a simulator log.
package main

import "github.com/sarchlab/ipcscan/ipcscan/cmd"

func main() {
	cmd.Execute()
}
