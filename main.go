package main

import (
	"os"

	"github.com/docchat-app/docchat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
