// Package docx edits the footers of WordprocessingML packages.
//
// A Document exposes the sections of the main document part and the default
// footer of each section. Paragraphs added to a footer are spliced into the
// footer part ahead of its closing tag; every other part of the package is
// copied through byte for byte. The body is scanned only to locate section
// properties and is rewritten only when a footer reference has to be added.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// XML namespaces and relationship types used by the package.
const (
	WordNS   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	RelNS    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	FooterRT = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	FooterCT = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"

	officeDocumentRT = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	contentTypesPart = "[Content_Types].xml"
	rootRelsPart     = "_rels/.rels"
	defaultMainPart  = "word/document.xml"
)

// Errors returned while reading or editing a package.
var (
	ErrNotPackage   = errors.New("not a word processing package")
	ErrMalformed    = errors.New("malformed package part")
	ErrNoFooterRoot = errors.New("footer part has no closing root element")
)

// Document is an opened word processing package.
type Document struct {
	zr       *zip.Reader
	files    map[string]*zip.File
	main     string
	rels     string
	body     []byte
	sections []*Section
	footers  map[string]*Footer
	relIDs   map[string]string
	edits    map[string][]byte
	added    []string
}

// Open reads a word processing package from data.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPackage, err)
	}

	d := &Document{
		zr:      zr,
		files:   make(map[string]*zip.File, len(zr.File)),
		footers: make(map[string]*Footer),
		edits:   make(map[string][]byte),
	}
	for _, f := range zr.File {
		d.files[f.Name] = f
	}

	if _, ok := d.files[contentTypesPart]; !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrNotPackage, contentTypesPart)
	}

	if d.main, err = d.mainPart(); err != nil {
		return nil, err
	}
	d.rels = path.Join(path.Dir(d.main), "_rels", path.Base(d.main)+".rels")

	if d.body, err = d.read(d.main); err != nil {
		return nil, err
	}

	if d.relIDs, err = d.footerTargets(); err != nil {
		return nil, err
	}

	if d.sections, err = scanSections(d, d.body); err != nil {
		return nil, err
	}
	return d, nil
}

// Sections returns the sections of the main document in document order.
func (d *Document) Sections() []*Section {
	return d.sections
}

// Bytes serializes the package. Parts that were not edited are copied
// without recompression.
func (d *Document) Bytes() ([]byte, error) {
	edits, err := d.render()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range d.zr.File {
		data, ok := edits[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		if err := writePart(zw, f.Name, data, f.FileHeader.Modified); err != nil {
			return nil, err
		}
	}

	for _, name := range d.added {
		if err := writePart(zw, name, edits[name], time.Time{}); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *Document) render() (map[string][]byte, error) {
	out := make(map[string][]byte, len(d.edits)+len(d.footers))
	for name, data := range d.edits {
		out[name] = data
	}

	for name, f := range d.footers {
		if len(f.paragraphs) == 0 && !f.created {
			continue
		}
		src, ok := out[name]
		if !ok {
			var err error
			if src, err = d.read(name); err != nil {
				return nil, err
			}
		}
		data, err := f.render(src)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

func writePart(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	h := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified}
	w, err := zw.CreateHeader(h)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (d *Document) read(name string) ([]byte, error) {
	if data, ok := d.edits[name]; ok {
		return data, nil
	}
	f, ok := d.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformed, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

type relationships struct {
	Items []struct {
		ID         string `xml:"Id,attr"`
		Type       string `xml:"Type,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

func (d *Document) readRels(name string) (*relationships, error) {
	var rels relationships
	if _, ok := d.files[name]; !ok {
		return &rels, nil
	}
	data, err := d.read(name)
	if err != nil {
		return nil, err
	}
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	return &rels, nil
}

func (d *Document) mainPart() (string, error) {
	rels, err := d.readRels(rootRelsPart)
	if err != nil {
		return "", err
	}
	for _, r := range rels.Items {
		if r.Type == officeDocumentRT {
			return strings.TrimPrefix(r.Target, "/"), nil
		}
	}
	if _, ok := d.files[defaultMainPart]; ok {
		return defaultMainPart, nil
	}
	return "", fmt.Errorf("%w: no main document part", ErrNotPackage)
}

// footerTargets maps footer relationship ids of the main part to part names.
func (d *Document) footerTargets() (map[string]string, error) {
	rels, err := d.readRels(d.rels)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, r := range rels.Items {
		if r.Type != FooterRT || r.TargetMode == "External" {
			continue
		}
		out[r.ID] = d.resolve(r.Target)
	}
	return out, nil
}

func (d *Document) resolve(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(d.main), target)
}

// footer returns the tracked footer for part. Existing parts are checked on
// first use so a footer that cannot be edited fails its section only.
func (d *Document) footer(part string) (*Footer, error) {
	if f, ok := d.footers[part]; ok {
		return f, nil
	}
	src, err := d.read(part)
	if err != nil {
		return nil, err
	}
	if err := checkFooterRoot(src); err != nil {
		return nil, fmt.Errorf("%s: %w", part, err)
	}
	f := &Footer{part: part}
	d.footers[part] = f
	return f, nil
}

// createFooter adds an empty footer part, relates it to the main part and
// references it from the given section.
func (d *Document) createFooter(s *Section) (*Footer, error) {
	dir := path.Dir(d.main)
	n := 1
	for {
		if _, ok := d.files[path.Join(dir, fmt.Sprintf("footer%d.xml", n))]; !ok {
			break
		}
		n++
	}
	part := path.Join(dir, fmt.Sprintf("footer%d.xml", n))
	target := path.Base(part)

	rels, err := d.readRels(d.rels)
	if err != nil {
		return nil, err
	}
	used := make(map[string]bool, len(rels.Items))
	for _, r := range rels.Items {
		used[r.ID] = true
	}
	id := 1
	for used[fmt.Sprintf("rId%d", id)] {
		id++
	}
	relID := fmt.Sprintf("rId%d", id)

	body, err := s.addFooterReference(d.body, relID)
	if err != nil {
		return nil, err
	}

	relEntry := fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s"/>`, relID, FooterRT, target)
	relsData, relsAdded, err := d.spliceBeforeClose(d.rels, "Relationships", relEntry, emptyRels)
	if err != nil {
		return nil, err
	}

	override := fmt.Sprintf(`<Override PartName="/%s" ContentType="%s"/>`, part, FooterCT)
	types, _, err := d.spliceBeforeClose(contentTypesPart, "Types", override, nil)
	if err != nil {
		return nil, err
	}

	// All edits are computed before any is committed so a failure leaves
	// the package untouched.
	delta := len(body) - len(d.body)
	d.commit(d.main, body, false)
	d.commit(d.rels, relsData, relsAdded)
	d.commit(contentTypesPart, types, false)
	d.commit(part, []byte(emptyFooter), true)
	d.body = body
	d.relIDs[relID] = part
	s.link(relID, delta)

	f := &Footer{part: part, created: true}
	d.footers[part] = f
	return f, nil
}

func (d *Document) commit(part string, data []byte, added bool) {
	d.edits[part] = data
	if added {
		d.added = append(d.added, part)
		d.files[part] = nil
	}
}

const emptyFooter = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
	`<w:ftr xmlns:w="` + WordNS + `" xmlns:r="` + RelNS + `"></w:ftr>`

var emptyRels = []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`)

// spliceBeforeClose returns part with fragment inserted ahead of its closing
// root tag. When the part does not exist and fallback is set, fallback is
// used as the initial content and added reports true.
func (d *Document) spliceBeforeClose(part, root, fragment string, fallback []byte) ([]byte, bool, error) {
	var (
		data  []byte
		added bool
	)
	if _, ok := d.files[part]; ok {
		var err error
		if data, err = d.read(part); err != nil {
			return nil, false, err
		}
	} else if fallback != nil {
		data = fallback
		added = true
	} else {
		return nil, false, fmt.Errorf("%w: missing %s", ErrMalformed, part)
	}

	closing := []byte("</" + root + ">")
	at := bytes.LastIndex(data, closing)
	if at < 0 {
		return nil, false, fmt.Errorf("%w: %s has no closing %s", ErrMalformed, part, root)
	}

	out := make([]byte, 0, len(data)+len(fragment))
	out = append(out, data[:at]...)
	out = append(out, fragment...)
	out = append(out, data[at:]...)
	return out, added, nil
}
