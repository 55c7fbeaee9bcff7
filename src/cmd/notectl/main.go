package main

import (
	"os"

	"notes-app/src/cli"
)

func main() {
	os.Exit(cli.Execute())
}
