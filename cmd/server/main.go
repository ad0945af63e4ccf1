package main

import "github.com/eventuraa/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
