package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Section is one section of the main document, delimited by a sectPr
// element either inside a paragraph or at the end of the body.
type Section struct {
	doc         *Document
	index       int
	open        int
	end         int
	selfClosing bool
	prefix      string
	relPrefix   string
	footerRef   string
}

// Index returns the zero-based position of the section.
func (s *Section) Index() int {
	return s.index
}

// Linked reports whether the section has no default footer of its own and
// inherits the footer of the previous section.
func (s *Section) Linked() bool {
	return s.footerRef == ""
}

// Footer returns the default footer shown by the section. A linked section
// returns the footer it inherits; a first section without any footer gets a
// new, empty footer part.
func (s *Section) Footer() (*Footer, error) {
	if s.footerRef != "" {
		part, ok := s.doc.relIDs[s.footerRef]
		if !ok {
			return nil, fmt.Errorf("%w: footer relationship %s not found", ErrMalformed, s.footerRef)
		}
		return s.doc.footer(part)
	}
	if s.index > 0 {
		return s.doc.sections[s.index-1].Footer()
	}
	return s.doc.createFooter(s)
}

// addFooterReference returns body with a default footer reference to relID
// placed first inside the section properties.
func (s *Section) addFooterReference(body []byte, relID string) ([]byte, error) {
	if s.prefix == "" {
		return nil, fmt.Errorf("%w: section properties are not namespace prefixed", ErrMalformed)
	}

	var ref string
	if s.relPrefix != "" {
		ref = fmt.Sprintf(`<%s:footerReference %s:type="default" %s:id="%s"/>`,
			s.prefix, s.prefix, s.relPrefix, relID)
	} else {
		ref = fmt.Sprintf(`<%s:footerReference xmlns:r="%s" %s:type="default" r:id="%s"/>`,
			s.prefix, RelNS, s.prefix, relID)
	}

	out := make([]byte, 0, len(body)+len(ref)+16)
	if s.selfClosing {
		out = append(out, body[:s.end-2]...)
		out = append(out, '>')
		out = append(out, ref...)
		out = append(out, "</"+s.prefix+":sectPr>"...)
	} else {
		out = append(out, body[:s.end]...)
		out = append(out, ref...)
	}
	out = append(out, body[s.end:]...)
	return out, nil
}

// link records a footer reference added to the section and moves the
// offsets of the sections that follow it.
func (s *Section) link(relID string, delta int) {
	s.footerRef = relID
	s.selfClosing = false
	for _, next := range s.doc.sections[s.index+1:] {
		next.open += delta
		next.end += delta
	}
}

// scanSections locates every section of body and its default footer
// reference. Section properties recorded as tracked changes are ignored.
func scanSections(d *Document, body []byte) ([]*Section, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	var (
		sections  []*Section
		stack     []string
		current   *Section
		depth     int
		relPrefix string
		prefixes  = make(map[string]string)
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, d.main, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				for _, a := range t.Attr {
					if a.Name.Space == "xmlns" {
						prefixes[a.Value] = a.Name.Local
					}
				}
				relPrefix = prefixes[RelNS]
			}

			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, t.Name.Local)

			if t.Name.Space != WordNS {
				continue
			}

			switch {
			case t.Name.Local == "sectPr" && (parent == "pPr" || parent == "body"):
				end := int(dec.InputOffset())
				open := bytes.LastIndexByte(body[:end], '<')
				current = &Section{
					doc:         d,
					index:       len(sections),
					open:        open,
					end:         end,
					selfClosing: bytes.HasSuffix(body[:end], []byte("/>")),
					prefix:      prefixes[WordNS],
					relPrefix:   relPrefix,
				}
				depth = len(stack)
				sections = append(sections, current)

			case t.Name.Local == "footerReference" && current != nil && len(stack) == depth+1:
				typ, id := "default", ""
				for _, a := range t.Attr {
					switch {
					case a.Name.Space == WordNS && a.Name.Local == "type":
						typ = a.Value
					case a.Name.Space == RelNS && a.Name.Local == "id":
						id = a.Value
					}
				}
				if typ == "default" && id != "" {
					current.footerRef = id
				}
			}

		case xml.EndElement:
			if current != nil && len(stack) == depth {
				current = nil
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	return sections, nil
}
