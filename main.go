package main

import "github.com/klytics/tsconv/cmd"

func main() {
	cmd.Execute()
}
