package main

import "github.com/skillscout/skillscout/internal/cli"

func main() {
	cli.Execute()
}
