// Command sixelv decodes, resizes, and renders a single image as SIXEL,
// BMP, or ASCII art, sharing sayaka's image-processing core.
package main

import "github.com/sayaka-go/sayaka/cmd"

func main() {
	cmd.ExecuteSixelv()
}
