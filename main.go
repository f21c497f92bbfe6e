package main

import (
	"os"
)

func main() {
	params := newCommandParams(os.Stdout, os.Exit)
	if err := newRootCommand(params).Execute(); err != nil {
		os.Exit(1)
	}
}
