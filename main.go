// file: main.go
// version: 1.0.0
// guid: 2f3e4d5c-6b7a-8901-2345-6789abcdef01

package main

import (
	"fmt"
	"os"

	"github.com/answerbox/answerbox/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
