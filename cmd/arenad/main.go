package main

import "github.com/mcoot/arenactl/internal/cli"

func main() {
	cli.Execute()
}
