// main is the entry point for the depthaudit CLI.
package main

import (
	"github.com/huangsam/depthaudit/cmd"
	"github.com/huangsam/depthaudit/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
