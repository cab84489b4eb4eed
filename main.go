package main

import "github.com/Lumos-Labs-HQ/overlord-seed/cmd"

func main() {
	cmd.Execute()
}
