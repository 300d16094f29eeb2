package main

import "image-steganography/cmd"

func main() {
	cmd.Execute()
}
