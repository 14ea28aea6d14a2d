package main

import "multiping/internal/cli"

func main() {
	cli.Execute()
}
