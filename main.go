package main

import "github.com/KaramelBytes/insights-explorer/cmd"

func main() {
	cmd.Execute()
}
