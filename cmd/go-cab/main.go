package main

import "github.com/cabinetfs/go-cab/cmd"

func main() {
	cmd.Execute()
}
