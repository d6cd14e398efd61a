package main

import "github.com/protonfetch/protonfetch/cmd/protonfetch/cmd"

func main() {
	cmd.Execute()
}
