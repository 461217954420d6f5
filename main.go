package main

import "guesthub/cmd"

func main() {
	cmd.Execute()
}
