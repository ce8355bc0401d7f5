package main

import "access-sync/cmd"

func main() {
	cmd.Execute()
}
