package main

import "pingme/internal/cli"

func main() {
	cli.Execute()
}
