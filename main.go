package main

import "github.com/FredHutch/docker-eggnog-mapper/cmd"

func main() {
	cmd.Execute()
}
