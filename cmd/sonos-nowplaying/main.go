package main

import (
	"os"

	"github.com/strefethen/sonos-nowplaying-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
