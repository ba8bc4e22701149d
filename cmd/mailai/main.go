package main

import "github.com/nhle/mailai/internal/cli"

func main() {
	cli.Execute()
}
