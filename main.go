package main

import "colabdraw/cmd"

func main() {
	cmd.Execute()
}
