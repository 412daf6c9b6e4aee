package main

import (
	"os"

	"xojoc.pw/discussions/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
