package main

import "github.com/openfolio/brokerd/internal/cli"

func main() {
	cli.Execute()
}
