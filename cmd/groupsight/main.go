package main

import (
	"os"

	"github.com/solatis/groupsight/cmd/groupsight/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
