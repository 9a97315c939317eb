// Command sayaka streams and renders a Misskey timeline in the terminal.
package main

import "github.com/sayaka-go/sayaka/cmd"

func main() {
	cmd.Execute()
}
