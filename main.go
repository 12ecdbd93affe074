/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/dekorhaus/apiserver/cmd"

func main() {
	cmd.Execute()
}
