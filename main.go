package main

import (
	"os"

	"github.com/GoBackOffice/GoBackOffice/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
