package main

import (
	"context"
	"fmt"
	"os"

	"github.com/timmy/contentfactory/internal/cli"
	"github.com/timmy/contentfactory/internal/logger"
)

func main() {
	err := cli.Execute(context.Background())
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
