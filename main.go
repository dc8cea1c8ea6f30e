package main

import (
	"os"

	"github.com/plantr/policyhub/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
