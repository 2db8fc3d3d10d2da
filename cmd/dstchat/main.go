// Command dstchat explores Danish statistics from the terminal.
package main

import "github.com/diogo/dstchat/internal/commands"

func main() {
	commands.Execute()
}
