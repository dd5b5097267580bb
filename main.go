package main

import (
	"os"

	"github.com/abhisek/myenglish/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
