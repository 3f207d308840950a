package main

import "github.com/Asami3315/Emergency-Ringer/cmd/ringer-server/cmd"

func main() {
	cmd.Execute()
}
