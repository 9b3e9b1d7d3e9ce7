package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/mathi-naickan/opensaf-sub000/cmd"
)

// Version can be set during build with -ldflags
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
