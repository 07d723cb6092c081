package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonwraymond/healthops/internal/cli"
)

func main() {
	root := cli.NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, cli.ErrUnhealthy) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}
