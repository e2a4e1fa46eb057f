package main

import "github.com/criblink/featured/cmd"

func main() {
	cmd.Execute()
}
