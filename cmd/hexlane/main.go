package main

import "github.com/sky-uk/hexlane/hexlane/cmd"

func main() {
	cmd.Execute()
}
