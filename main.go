package main

import "github.com/Justype/gaussub/cmd"

func main() {
	cmd.Execute()
}
