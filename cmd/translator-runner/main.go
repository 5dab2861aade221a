package main

import "github.com/devicelab-dev/translator-runner/pkg/cli"

func main() {
	cli.Execute()
}
