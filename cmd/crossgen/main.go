package main

import (
	"fmt"
	"os"

	"github.com/xwordcore/autofill/cmd/crossgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
