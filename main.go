package main

import "github.com/CraigKelly/amwg/cmd"

// TODO: write chain draws to a trace file so runs can be summarized offline

func main() {
	cmd.Execute()
}
