package main

import (
	"os"

	"commando/cli"
)

func main() {
	os.Exit(cli.Execute())
}
