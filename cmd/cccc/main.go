/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/cccc/cmd/cccc/cmd"

func main() {
	cmd.Execute()
}
