// Package gopher implements the client side of the Gopher protocol
// (RFC 1436) as gopherdl needs it: resource identity, root address
// parsing, gophermap parsing, and a retrying TCP fetch client.
//
// # Protocol shape
//
// A request is the selector string followed by CRLF; the response is raw
// bytes until the server closes the connection. Menus (type '1') are
// tab-separated records naming further resources.
//
// # Components
//
//   - Resource: identity, display URL, archive storage paths, validity
//   - ParseAddress: root address parsing with the menu-type heuristic
//   - MenuParser: tolerant gophermap parsing
//   - Client: delay-respecting fetch with transient-failure retry
//
// All network entry points take a context and honor cancellation.
package gopher
