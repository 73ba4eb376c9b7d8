package main

import "github.com/tranvictor/nftstake/cmd"

func main() {
	cmd.Execute()
}
