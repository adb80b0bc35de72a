package main

import "github.com/factorysh/selftest/cmd"

func main() {
	cmd.Execute()
}
