package main

import (
	"github.com/luma/ola/cmd"
)

func main() {
	cmd.Execute()
}
