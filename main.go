package main

import "github.com/xhad/reelindex/cmd"

func main() {
	cmd.Execute()
}
