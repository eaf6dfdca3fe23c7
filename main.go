package main

import "github.com/suranjanamuahaha/BlinkEd/cmd"

func main() {
	cmd.Execute()
}
