package main

import "devsetup/internal/cli"

func main() {
	cli.Execute()
}
