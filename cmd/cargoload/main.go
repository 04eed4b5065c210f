package main

import "github.com/DrSkyle/cargoload/cmd/cargoload/commands"

func main() {
	commands.Execute()
}
