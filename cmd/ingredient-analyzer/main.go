package main

import (
	"fmt"
	"os"

	"github.com/noot-app/ingredient-analyzer/internal/cmd"
)

func main() {
	err := cmd.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
