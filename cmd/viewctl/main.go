package main

import (
	"context"
	"os"
)

var version = "dev"

func main() {
	if err := run(context.Background(), os.Args, os.Stdout, version); err != nil {
		os.Exit(1)
	}
}
