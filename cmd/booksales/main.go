package main

import "github.com/marshallshelly/booksales/cmd/booksales/commands"

func main() {
	commands.Execute()
}
