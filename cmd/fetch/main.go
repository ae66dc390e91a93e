// Command fetch sends one HTTP/1.1 request and prints the response body.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(fetch(context.Background(), os.Stdout, os.Stderr, os.Args[1:]...))
}
