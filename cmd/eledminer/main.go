package main

import (
	"os"

	"github.com/baaaaaaaka/eledminer/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
