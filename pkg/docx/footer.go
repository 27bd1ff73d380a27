package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Footer is a footer part shared by one or more sections. Paragraphs added
// to it are appended after its existing content.
type Footer struct {
	part       string
	created    bool
	paragraphs []*Paragraph
}

// Part returns the package part name of the footer.
func (f *Footer) Part() string {
	return f.part
}

// Created reports whether the footer part was added to the package.
func (f *Footer) Created() bool {
	return f.created
}

// AddParagraph appends an empty paragraph and returns it.
func (f *Footer) AddParagraph() *Paragraph {
	p := &Paragraph{}
	f.paragraphs = append(f.paragraphs, p)
	return p
}

// Paragraph is a paragraph appended to a footer.
type Paragraph struct {
	runs []Run
}

// AddRun appends a run of text to the paragraph.
func (p *Paragraph) AddRun(r Run) *Paragraph {
	p.runs = append(p.runs, r)
	return p
}

// Run is a span of uniformly formatted text. Size is in points and Color is
// an RGB hex string; zero values leave the attribute unset.
type Run struct {
	Text  string
	Bold  bool
	Size  float64
	Color string
}

// render splices the added paragraphs into src ahead of the closing ftr tag.
func (f *Footer) render(src []byte) ([]byte, error) {
	if err := checkFooterRoot(src); err != nil {
		return nil, err
	}

	at := bytes.LastIndex(src, []byte("</"))
	if at < 0 || !bytes.HasPrefix(bytes.TrimSpace(src[at:]), []byte("</w:ftr>")) {
		return nil, ErrNoFooterRoot
	}

	var buf bytes.Buffer
	buf.Grow(len(src) + 256*len(f.paragraphs))
	buf.Write(src[:at])

	if len(f.paragraphs) == 0 {
		buf.WriteString("<w:p/>")
	}
	for _, p := range f.paragraphs {
		if err := p.write(&buf); err != nil {
			return nil, err
		}
	}

	buf.Write(src[at:])
	return buf.Bytes(), nil
}

// checkFooterRoot verifies that the root element is a w:ftr with the w
// prefix bound to the main namespace, which the rendered fragments rely on.
func checkFooterRoot(src []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(src))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return ErrNoFooterRoot
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Space != WordNS || start.Name.Local != "ftr" {
			return fmt.Errorf("%w: root element is %s", ErrMalformed, start.Name.Local)
		}
		for _, a := range start.Attr {
			if a.Name.Space == "xmlns" && a.Name.Local == "w" && a.Value == WordNS {
				return nil
			}
		}
		return fmt.Errorf("%w: footer does not bind the w prefix", ErrMalformed)
	}
}

func (p *Paragraph) write(buf *bytes.Buffer) error {
	if len(p.runs) == 0 {
		buf.WriteString("<w:p/>")
		return nil
	}

	buf.WriteString("<w:p>")
	for _, r := range p.runs {
		buf.WriteString("<w:r>")
		r.writeProperties(buf)
		buf.WriteString(`<w:t xml:space="preserve">`)
		if err := xml.EscapeText(buf, []byte(r.Text)); err != nil {
			return err
		}
		buf.WriteString("</w:t></w:r>")
	}
	buf.WriteString("</w:p>")
	return nil
}

func (r Run) writeProperties(buf *bytes.Buffer) {
	if !r.Bold && r.Color == "" && r.Size <= 0 {
		return
	}

	buf.WriteString("<w:rPr>")
	if r.Bold {
		buf.WriteString("<w:b/>")
	}
	if r.Color != "" {
		buf.WriteString(`<w:color w:val="` + r.Color + `"/>`)
	}
	if r.Size > 0 {
		half := strconv.Itoa(int(r.Size * 2))
		buf.WriteString(`<w:sz w:val="` + half + `"/><w:szCs w:val="` + half + `"/>`)
	}
	buf.WriteString("</w:rPr>")
}
