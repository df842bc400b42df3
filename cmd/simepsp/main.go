package main

import "sim-epsp/internal/cli"

func main() {
	cli.Execute()
}
