package main

import "github.com/topomesh/remap/cmd"

func main() {
	cmd.Execute()
}
