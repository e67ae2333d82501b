package pipeline

import (
	"errors"

	"github.com/gmorong/fias-ingest/internal/xmlreader"
)

var errNoAddrObjFiles = errors.New("no AS_ADDR_OBJ files found under xml directory")

// multiFileSource concatenates a sequence of xmlreader.Readers into a
// single hierarchy.ObjectSource, advancing to the next file once the
// current one is exhausted.
type multiFileSource struct {
	paths       []string
	elementName string
	index       int
	current     *xmlreader.Reader
}

func newMultiFileSource(paths []string, elementName string) (*multiFileSource, error) {
	return &multiFileSource{paths: paths, elementName: elementName}, nil
}

func (s *multiFileSource) Next() (map[string]string, bool, error) {
	for {
		if s.current == nil {
			if s.index >= len(s.paths) {
				return nil, false, nil
			}
			r, err := xmlreader.Open(s.paths[s.index], s.elementName)
			if err != nil {
				return nil, false, err
			}
			s.index++
			s.current = r
		}

		el, ok, err := s.current.Next()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			s.current.Close()
			s.current = nil
			continue
		}
		return el.Attributes, true, nil
	}
}

func (s *multiFileSource) Close() error {
	if s.current != nil {
		return s.current.Close()
	}
	return nil
}
