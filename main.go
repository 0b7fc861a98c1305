package main

import "emwa/cmd"

func main() {
	cmd.Execute()
}
