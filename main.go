package main

import "rewrite-manager/cmd"

func main() {
	cmd.Execute()
}
