package main

import (
	"github.com/felixgeelhaar/taskdeck/adapter/cli"
)

func main() {
	cli.Execute()
}
