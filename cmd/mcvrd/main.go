/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/materials-commons/mcvr/cmd/mcvrd/cmd"

func main() {
	cmd.Execute()
}
