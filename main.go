package main

import "github.com/threatresponse/limefetch/cmd"

var version = "develop"

func main() {
	cmd.Execute(version)
}
