package main

import (
	"os"

	"github.com/parley-chat/parley/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
