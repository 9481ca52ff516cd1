// Package main provides the entry point for the gopherdl CLI.
//
// gopherdl mirrors Gopher servers: given one or more gopher addresses it
// downloads menus and files into a local directory tree, optionally
// following menu links recursively.
//
// Usage:
//
//	gopherdl get gopher://gopher.example.org
//	gopherdl get -r gopher.example.org
//
// See --help for all available options.
package main

// main is the entry point for gopherdl.
func main() {
	Execute()
}
