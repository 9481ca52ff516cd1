package gopher

// ItemType is the single-character type tag that prefixes every menu entry
// and classifies what a selector points at (RFC 1436, section 3.8).
type ItemType byte

// Canonical item types. Servers in the wild emit tags beyond this list;
// unknown tags are treated as plain downloadable content.
const (
	// TypeTextFile is a plain text document.
	TypeTextFile ItemType = '0'
	// TypeMenu is a directory listing (gophermap). Menus are the only
	// resources the crawler expands.
	TypeMenu ItemType = '1'
	// TypeCSO is a CSO phone-book server. Not fetchable.
	TypeCSO ItemType = '2'
	// TypeError is a server-side error entry. Not fetchable.
	TypeError ItemType = '3'
	// TypeBinHex is a BinHexed Macintosh file.
	TypeBinHex ItemType = '4'
	// TypeDOSBinary is a DOS binary archive.
	TypeDOSBinary ItemType = '5'
	// TypeUUEncoded is a uuencoded file.
	TypeUUEncoded ItemType = '6'
	// TypeSearch is a full-text search endpoint. Fetching it needs a
	// query submission, so a mirror cannot retrieve it.
	TypeSearch ItemType = '7'
	// TypeTelnet is a telnet session pointer. Not fetchable.
	TypeTelnet ItemType = '8'
	// TypeBinary is a generic binary file.
	TypeBinary ItemType = '9'
	// TypeGIF is a GIF image.
	TypeGIF ItemType = 'g'
	// TypeHTML is an HTML document.
	TypeHTML ItemType = 'h'
	// TypeInfo is an informational line carrying display text but no
	// resource. Menu parsing skips these.
	TypeInfo ItemType = 'i'
	// TypeImage is a generic image file.
	TypeImage ItemType = 'I'
	// TypeSound is a sound file.
	TypeSound ItemType = 's'
	// TypeTN3270 is a tn3270 session pointer. Not fetchable.
	TypeTN3270 ItemType = 'T'
)

// Fetchable reports whether content behind this type tag can be retrieved
// with a plain selector request. Interactive and meta types (search, CSO,
// error, telnet, tn3270) cannot.
func (t ItemType) Fetchable() bool {
	switch t {
	case TypeSearch, TypeCSO, TypeError, TypeTelnet, TypeTN3270:
		return false
	default:
		return true
	}
}

// String returns the tag as a one-character string for logs and reports.
func (t ItemType) String() string {
	return string(rune(t))
}
