package gopher

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// GophermapFileName is the file name under which menu content is stored,
// so a menu's own bytes and the menu's children can share a directory.
const GophermapFileName = "gophermap"

// Resource identifies one fetchable item on a Gopher server: the tuple of
// item type, display text, selector, host, and port taken from a menu line
// or synthesized from a root address.
type Resource struct {
	// Type is the menu type tag.
	Type ItemType

	// Text is the human-readable label from the menu line. It plays no
	// part in identity.
	Text string

	// Selector is the raw path string sent on the wire to request the
	// resource. Queries ("/cgi?arg") stay embedded in the selector.
	Selector string

	// Host and Port say where to connect. DefaultPort applies when a
	// menu line or address omits the port.
	Host string
	Port int
}

// Identity is the deduplication key for a resource: host plus selector.
// Type, text, and port play no part, so the same document linked from two
// menus under different labels is still one crawl-graph node.
type Identity struct {
	Host     string
	Selector string
}

// Identity returns the comparable crawl-graph key for the resource.
func (r *Resource) Identity() Identity {
	return Identity{Host: r.Host, Selector: r.Selector}
}

// Equal reports whether two resources address the same item, meaning host
// and selector match.
func (r *Resource) Equal(other *Resource) bool {
	if other == nil {
		return false
	}
	return r.Identity() == other.Identity()
}

// IsMenu reports whether the resource is a directory listing that the
// crawler should expand.
func (r *Resource) IsMenu() bool {
	return r.Type == TypeMenu
}

// URL renders the display form "gopher://host/selector". The port is
// omitted and the selector is kept raw (no percent-encoding) so that
// accept/reject patterns match exactly what appeared in the menu. A query
// embedded in the selector renders after the path.
func (r *Resource) URL() string {
	sel := r.Selector
	query := ""
	if idx := strings.Index(sel, "?"); idx != -1 {
		sel, query = sel[:idx], sel[idx:]
	}
	if !strings.HasPrefix(sel, "/") {
		sel = "/" + sel
	}
	return "gopher://" + r.Host + sel + query
}

// RawPath returns the host-rooted relative path for the selector without
// the gophermap suffix: "<host>/<selector segments>". Used for progress
// display and as the base of StoragePath.
func (r *Resource) RawPath() string {
	trimmed := strings.Trim(r.Selector, "/")
	return filepath.Join(r.Host, filepath.FromSlash(trimmed))
}

// StoragePath returns the relative path under the archive root where the
// resource is persisted. Menus get GophermapFileName appended.
func (r *Resource) StoragePath() string {
	if r.IsMenu() {
		return filepath.Join(r.RawPath(), GophermapFileName)
	}
	return r.RawPath()
}

// Hash returns a short hex digest of the storage path. Reports and logs
// use it to correlate entries without printing full paths.
func (r *Resource) Hash() string {
	sum := sha256.Sum256([]byte(r.StoragePath()))
	return hex.EncodeToString(sum[:8])
}

// Valid reports whether the resource may be fetched and persisted. It
// rejects empty selectors, non-positive ports, non-fetchable type tags,
// "URL:" redirect pseudo-selectors, and resources whose storage path
// escapes their own host directory.
func (r *Resource) Valid() bool {
	if r.Selector == "" {
		return false
	}
	if r.Port <= 0 {
		return false
	}
	if !r.Type.Fetchable() {
		return false
	}
	if strings.Contains(r.Selector, "URL:") {
		return false
	}
	return r.contained()
}

// contained reports whether the cleaned storage path stays under the host
// segment of the archive tree. The check is lexical and segment-exact:
// "/../../etc/passwd" on example.org cleans to "../etc/passwd" and is
// rejected, as is a selector that climbs out of the host directory into a
// sibling whose name merely starts with the host. A host that is itself a
// dot path or carries separators can never be contained.
func (r *Resource) contained() bool {
	if r.Host == "" || r.Host == "." || r.Host == ".." || strings.ContainsAny(r.Host, `/\`) {
		return false
	}
	cleaned := filepath.Clean(r.StoragePath())
	if cleaned == r.Host {
		return true
	}
	return strings.HasPrefix(cleaned, r.Host+string(filepath.Separator))
}
