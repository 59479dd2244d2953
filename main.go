package main

import "go-drummer/cmd"

func main() {
	cmd.Execute()
}
