package main

import (
	"github.com/millern/kafdrop/cmd/kafdrop/cmd"
)

func main() {
	cmd.Execute()
}
