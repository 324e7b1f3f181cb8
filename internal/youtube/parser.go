package youtube

import (
	"fmt"
	"strings"

	"github.com/linkgrab/linkgrab/internal/domain"
)

// ResultParser recovers the destination file path from the download tool's
// combined output. The success marker text differs between tool releases,
// so each known variant gets its own parser; new releases are supported by
// adding a parser, not by editing control flow.
type ResultParser interface {
	// Name identifies the tool-output variant this parser understands.
	Name() string

	// Parse returns the destination path and true when the output matches
	// this variant.
	Parse(output string) (string, bool)
}

// mergeMarkerParser handles releases that report
// `[Merger] Merging formats into "<path>"`.
type mergeMarkerParser struct{}

func (mergeMarkerParser) Name() string { return "merge-marker" }

func (mergeMarkerParser) Parse(output string) (string, bool) {
	_, rest, ok := strings.Cut(output, "Merging formats into")
	if !ok {
		return "", false
	}
	start := strings.IndexByte(rest, '"')
	if start == -1 {
		return "", false
	}
	end := strings.IndexByte(rest[start+1:], '"')
	if end == -1 {
		return "", false
	}
	path := rest[start+1 : start+1+end]
	return path, path != ""
}

// destinationMarkerParser handles releases that report
// `[download] Destination: <path>` style lines, including the
// `[ExtractAudio] Destination: <path>` form for audio extraction.
type destinationMarkerParser struct{}

func (destinationMarkerParser) Name() string { return "destination-marker" }

func (destinationMarkerParser) Parse(output string) (string, bool) {
	for _, marker := range []string{"[ExtractAudio] Destination:", "; Destination:"} {
		if _, rest, ok := strings.Cut(output, marker); ok {
			line := rest
			if i := strings.IndexByte(line, '\n'); i != -1 {
				line = line[:i]
			}
			path := strings.TrimSpace(line)
			if path != "" {
				return path, true
			}
		}
	}
	return "", false
}

// resultParsers is consulted in order; the first matching parser wins.
var resultParsers = []ResultParser{
	mergeMarkerParser{},
	destinationMarkerParser{},
}

// ParseDestination scans tool output for a known success marker and returns
// the destination file path.
func ParseDestination(output string) (string, error) {
	for _, p := range resultParsers {
		if path, ok := p.Parse(output); ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no destination marker in tool output", domain.ErrExternalTool)
}
