package main

import (
	"log"

	"github.com/anoixa/depicts-editor/cmd"
	"github.com/anoixa/depicts-editor/config"
)

func main() {
	log.Printf("depicts-editor %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
