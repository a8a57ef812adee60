package main

import (
	"superfork/internal/cmd"
)

func main() {
	cmd.Execute()
}
