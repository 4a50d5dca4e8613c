package main

import (
	"os"

	"github.com/GoCourseNav/GoCourseNav/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
