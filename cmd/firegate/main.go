package main

import "firegate/internal/cli"

func main() {
	cli.Execute()
}
