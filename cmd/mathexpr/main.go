// Command mathexpr evaluates expressions from the command line or a YAML
// notebook.
package main

import (
	"context"
	"os"
)

func main() {
	err := run(context.Background(), os.Stdin, os.Stdout, os.Stderr, os.Exit, os.Args[1:]...)
	if err != nil {
		os.Exit(1)
	}
}
