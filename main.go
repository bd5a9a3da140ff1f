package main

import "github.com/lumikey/lumikey/cmd"

func main() {
	cmd.Execute()
}
