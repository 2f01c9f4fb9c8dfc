package main

import (
	"fmt"
	"os"

	"github.com/platemenu/platemenu/internal/tools/seed"
)

func main() {
	if err := seed.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}
