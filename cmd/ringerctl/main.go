package main

import "github.com/Asami3315/Emergency-Ringer/cmd/ringerctl/cmd"

func main() {
	cmd.Execute()
}
