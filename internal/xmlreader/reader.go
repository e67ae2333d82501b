// Package xmlreader is the XML Stream Reader of spec.md §4.1: a
// pull-based reader over encoding/xml's token stream that yields one
// element at a time with O(single element) memory and explicit
// subtree release, plus directory-based file discovery. The pack
// contains no third-party streaming XML library in any example's
// go.mod (see DESIGN.md), so this component stays on the standard
// library's encoding/xml.
package xmlreader

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/gmorong/fias-ingest/internal/ingesterr"
)

// Element is one element-end event: its local name and its flattened
// attribute map. Values are kept as opaque strings; numeric parsing is
// left to callers.
type Element struct {
	Name       string
	Attributes map[string]string
}

// Reader streams Element events from a single XML file.
type Reader struct {
	f       *os.File
	dec     *xml.Decoder
	matches map[string]bool
}

// Open starts streaming path. matchNames restricts emitted elements
// to the given local names (e.g. "OBJECT", "ITEM", "HOUSE", "PARAM",
// "STEAD"); an empty set emits every element with attributes. An
// emitted element's subtree is skipped, so elements nested inside it
// are not emitted.
func Open(path string, matchNames ...string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ingesterr.Source("xmlreader.Open", err)
	}

	m := make(map[string]bool, len(matchNames))
	for _, n := range matchNames {
		m[n] = true
	}

	return &Reader{
		f:       f,
		dec:     xml.NewDecoder(f),
		matches: m,
	}, nil
}

// Next advances to the next matching element-end event. It returns
// ok=false and a nil error at clean EOF.
func (r *Reader) Next() (Element, bool, error) {
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			return Element{}, false, nil
		}
		if err != nil {
			return Element{}, false, ingesterr.Source("xmlreader.Next", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if len(r.matches) > 0 && !r.matches[start.Name.Local] {
			continue
		}
		if len(r.matches) == 0 && len(start.Attr) == 0 {
			continue
		}

		attrs := make(map[string]string, len(start.Attr))
		for _, a := range start.Attr {
			attrs[a.Name.Local] = a.Value
		}

		// Explicit subtree release: advance past this element's end
		// token (or its self-closing form) so the decoder's internal
		// state does not retain it, keeping memory at O(single element).
		if err := r.dec.Skip(); err != nil && err != io.EOF {
			return Element{}, false, ingesterr.Source("xmlreader.Next", err)
		}

		return Element{Name: start.Name.Local, Attributes: attrs}, true, nil
	}
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
