package main

import (
	"github.com/eventlife/eventlife/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.Die(err)
	}
}
