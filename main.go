package main

import "github.com/KaramelBytes/labagg-cli/cmd"

func main() {
	cmd.Execute()
}
