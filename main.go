package main

import "github.com/tuba-naf/teamtask-cli/cmd"

func main() {
	cmd.Execute()
}
