package main

import "github.com/K-NRS/repo-cli/commands"

func main() {
	commands.Execute()
}
