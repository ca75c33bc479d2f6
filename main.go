//go:build !desktop

package main

import (
	"fmt"
	"os"
)

// The desktop front end needs the webview toolchain; the command line tool
// in cmd/objalign builds without it.
func main() {
	fmt.Fprintln(os.Stderr, "objectaligner: desktop support not compiled in")
	fmt.Fprintln(os.Stderr, "build with: go build -tags desktop .")
	fmt.Fprintln(os.Stderr, "or use the command line tool: go run ./cmd/objalign --help")
	os.Exit(2)
}
