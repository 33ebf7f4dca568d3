package main

import "github.com/cloudcitycakeco/cakeorders/cmd"

func main() {
	cmd.Execute()
}
