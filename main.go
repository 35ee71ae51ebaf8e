package main

import "github.com/ablackman/reviewpulse/cmd"

func main() {
	cmd.Execute()
}
