package main

import "transit-catalog/cmd"

func main() {
	cmd.Execute()
}
