// Package main provides the querybench CLI.
package main

import "github.com/mesh-intelligence/querybench/internal/cli"

func main() {
	cli.Execute()
}
