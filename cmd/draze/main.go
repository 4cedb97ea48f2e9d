package main

import (
	"github.com/draze/draze-cli/internal/cli"
)

func main() {
	cli.Execute()
}
