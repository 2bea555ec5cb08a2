package main

import (
	"os"

	"github.com/peerpath/peerpath/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
