package main

import (
	"fmt"
	"os"

	"github.com/MrSnakeDoc/snote/internal/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "snotectl:", err)
		os.Exit(1)
	}
}
