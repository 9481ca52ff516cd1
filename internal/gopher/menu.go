package gopher

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Menu line skip reasons. parseMenuLine returns these so the parser can
// tell "not a resource" from "broken record" in its debug logs.
var (
	// errInfoLine marks informational lines (type 'i'), which carry
	// display text but no resource.
	errInfoLine = errors.New("informational line")

	// errMalformedLine marks records that do not follow the
	// type+text TAB selector TAB host TAB port shape.
	errMalformedLine = errors.New("malformed menu line")
)

// MenuParser turns raw gophermap bytes into validated resource candidates.
type MenuParser struct {
	logger *slog.Logger
}

// NewMenuParser creates a parser that reports skipped lines through the
// given logger. A nil logger falls back to slog.Default.
func NewMenuParser(logger *slog.Logger) *MenuParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuParser{logger: logger}
}

// Parse extracts every well-formed, valid resource from menu content.
// Menu order is preserved and duplicates are kept; deduplication belongs
// to the crawl engine. Informational and malformed lines are skipped and
// parsing continues with the next line, so one broken record never costs
// the remaining links. Candidates that fail validation are dropped with a
// debug log.
func (p *MenuParser) Parse(data []byte) []*Resource {
	var resources []*Resource
	for _, line := range strings.Split(decodeMenuText(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		res, err := parseMenuLine(line)
		if err != nil {
			if !errors.Is(err, errInfoLine) {
				p.logger.Debug("skipping menu line", "reason", err, "line", line)
			}
			continue
		}
		if !res.Valid() {
			p.logger.Debug("dropping invalid resource", "url", res.URL(), "type", res.Type.String())
			continue
		}
		resources = append(resources, res)
	}
	return resources
}

// parseMenuLine parses one tab-separated menu record:
//
//	<type tag><display text> TAB <selector> TAB <host> TAB <port>
//
// It returns errInfoLine for 'i' records and errMalformedLine, wrapped
// with detail, for records missing fields or carrying a non-numeric port.
func parseMenuLine(line string) (*Resource, error) {
	fields := strings.Split(line, "\t")
	if fields[0] == "" {
		return nil, fmt.Errorf("%w: empty type field", errMalformedLine)
	}
	typ := ItemType(fields[0][0])
	if typ == TypeInfo {
		return nil, errInfoLine
	}
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: %d fields", errMalformedLine, len(fields))
	}
	port, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return nil, fmt.Errorf("%w: bad port %q", errMalformedLine, fields[3])
	}
	return &Resource{
		Type:     typ,
		Text:     fields[0][1:],
		Selector: strings.TrimSpace(fields[1]),
		Host:     strings.TrimSpace(fields[2]),
		Port:     port,
	}, nil
}

// decodeMenuText converts menu bytes to a string, replacing sequences
// that are not valid UTF-8. Servers routinely emit Latin-1 or raw bytes;
// a bad sequence must not take down parsing of the whole gophermap.
func decodeMenuText(data []byte) string {
	decoded, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
