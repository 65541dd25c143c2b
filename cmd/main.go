package main

import (
	"os"

	legamecmd "github.com/soundprediction/legame/cmd/legame"
)

func main() {
	if err := legamecmd.Execute(); err != nil {
		os.Exit(1)
	}
}
