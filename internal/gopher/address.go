package gopher

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DefaultPort is the IANA-assigned Gopher port, used whenever an address
// or menu line does not name one.
const DefaultPort = 70

// Scheme is the only URL scheme accepted in root addresses.
const Scheme = "gopher"

// Address parsing errors.
var (
	// ErrUnsupportedScheme is returned when a root address carries a
	// scheme other than gopher://.
	ErrUnsupportedScheme = newAddressError("unsupported url scheme (only gopher:// is allowed)")

	// ErrInvalidPort is returned when the port in a root address is not
	// a number between 1 and 65535.
	ErrInvalidPort = newAddressError("invalid port in address")

	// ErrEmptyHost is returned when a root address has no host part.
	ErrEmptyHost = newAddressError("address has no host")
)

// addressError is the error type for root address parsing failures.
type addressError struct {
	message string
}

// newAddressError creates a new address error with the given message.
func newAddressError(message string) *addressError {
	return &addressError{message: message}
}

// Error implements the error interface.
func (e *addressError) Error() string {
	return e.message
}

// ParseAddress builds the root resource for a user-supplied address such
// as "gopher.example.org", "gopher://example.org:7070/docs", or
// "example.org/cgi?q".
//
//   - The gopher:// scheme is optional; any other scheme is an error.
//   - A missing port defaults to DefaultPort. IPv6 hosts use brackets.
//   - A missing selector becomes "/". A query suffix stays inside the
//     selector, so "host?q" parses to selector "/?q".
//   - The item type is guessed: a selector whose final segment has no dot,
//     or which ends in "/", is taken for a menu; anything else for a text
//     file. Servers expose no type information for a bare address.
func ParseAddress(raw string) (*Resource, error) {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, "://"); idx != -1 {
		if !strings.EqualFold(s[:idx], Scheme) {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, s[:idx])
		}
		s = s[idx+3:]
	}

	authority := s
	selector := ""
	if idx := strings.IndexAny(s, "/?"); idx != -1 {
		authority, selector = s[:idx], s[idx:]
	}

	host, port, err := splitHostPort(authority)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(selector, "/") {
		selector = "/" + selector
	}

	typ := TypeTextFile
	if probablyMenu(selector) {
		typ = TypeMenu
	}

	return &Resource{
		Type:     typ,
		Text:     "root",
		Selector: selector,
		Host:     host,
		Port:     port,
	}, nil
}

// splitHostPort splits "host", "host:port", or "[v6]:port" and applies
// the default port when none is present.
func splitHostPort(authority string) (string, int, error) {
	if authority == "" {
		return "", 0, ErrEmptyHost
	}
	host, portText, err := net.SplitHostPort(authority)
	if err != nil {
		// No port part: the whole authority is the host. Brackets
		// around a bare IPv6 literal are stripped.
		host = strings.TrimSuffix(strings.TrimPrefix(authority, "["), "]")
		if host == "" {
			return "", 0, ErrEmptyHost
		}
		return host, DefaultPort, nil
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidPort, portText)
	}
	if host == "" {
		return "", 0, ErrEmptyHost
	}
	return host, port, nil
}

// probablyMenu guesses whether a root selector points at a menu: the last
// path segment carries no file-extension dot, or the selector ends with a
// slash.
func probablyMenu(selector string) bool {
	if strings.HasSuffix(selector, "/") {
		return true
	}
	last := selector
	if idx := strings.LastIndex(selector, "/"); idx != -1 {
		last = selector[idx+1:]
	}
	return !strings.Contains(last, ".")
}
