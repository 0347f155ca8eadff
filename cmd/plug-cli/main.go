package main

import "github.com/nfrund/plug/cmd/plug-cli/cmd"

func main() {
	cmd.Execute()
}
