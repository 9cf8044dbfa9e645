package main

import "github.com/yuimhosin/datadashboard/internal/cli"

func main() {
	cli.Execute()
}
