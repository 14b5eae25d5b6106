package main

import (
	"proxybench/internal/cli"
)

func main() {
	cli.Execute()
}
