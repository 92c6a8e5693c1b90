// Command rubix parses Ruby source and converts trees to and from the
// binary stream format.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rubix:", err)
		os.Exit(1)
	}
}
