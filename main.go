package main

import "rackops/cmd"

func main() {
	cmd.Execute()
}
