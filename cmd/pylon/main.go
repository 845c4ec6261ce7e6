package main

import (
	"github.com/arthur-debert/pylon/internal/cli"
)

func main() {
	cli.Run()
}
