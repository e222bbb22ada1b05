package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/beevik/etree"
)

const (
	MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	mainPart = "word/document.xml"
)

var (
	ErrNotWordDocument = errors.New("not_word_document")

	placeholderPattern = regexp.MustCompile(`\{\{[A-Z0-9_]+\}\}`)
)

type part struct {
	name     string
	method   uint16
	data     []byte
	modified time.Time
}

// Document is an opened .docx package whose main part is editable.
type Document struct {
	parts []part
	main  *etree.Document
}

func OpenFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Open(data)
}

// Open parses a .docx package held in memory.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotWordDocument, err)
	}

	doc := &Document{parts: make([]part, 0, len(zr.File))}
	for _, f := range zr.File {
		content, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if f.Name == mainPart {
			main := etree.NewDocument()
			if err := main.ReadFromBytes(content); err != nil {
				return nil, fmt.Errorf("%w: parse %s: %v", ErrNotWordDocument, mainPart, err)
			}
			doc.main = main
		}
		doc.parts = append(doc.parts, part{
			name:     f.Name,
			method:   f.Method,
			data:     content,
			modified: f.Modified,
		})
	}
	if doc.main == nil {
		return nil, ErrNotWordDocument
	}
	return doc, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Bytes serializes the package with the edited main part.
func (d *Document) Bytes() ([]byte, error) {
	mainXML, err := d.main.WriteToBytes()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range d.parts {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   p.method,
			Modified: p.modified,
		})
		if err != nil {
			return nil, err
		}
		data := p.data
		if p.name == mainPart {
			data = mainXML
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Document) body() *etree.Element {
	root := d.main.Root()
	if root == nil {
		return nil
	}
	for _, child := range root.ChildElements() {
		if isW(child, "body") {
			return child
		}
	}
	return nil
}

// Paragraphs returns the text of every paragraph, table cells included, in document order.
func (d *Document) Paragraphs() []string {
	var out []string
	for _, p := range paragraphs(d.body()) {
		out = append(out, paragraphText(p))
	}
	return out
}

// Text joins all paragraph texts with newlines.
func (d *Document) Text() string {
	return strings.Join(d.Paragraphs(), "\n")
}

// Placeholders lists the distinct {{KEY}} tokens present in the document, sorted.
func (d *Document) Placeholders() []string {
	seen := map[string]struct{}{}
	for _, text := range d.Paragraphs() {
		for _, token := range placeholderPattern.FindAllString(text, -1) {
			seen[token] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for token := range seen {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// TableRowCount counts w:tr elements in the body.
func (d *Document) TableRowCount() int {
	count := 0
	walk(d.body(), func(el *etree.Element) bool {
		if isW(el, "tr") {
			count++
		}
		return true
	})
	return count
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const documentXMLFormat = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s<w:sectPr><w:pgSz w:w="12240" w:h="15840"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr></w:body></w:document>`

// New builds a minimal package around raw WordprocessingML body content.
func New(bodyXML string) (*Document, error) {
	main := etree.NewDocument()
	if err := main.ReadFromString(fmt.Sprintf(documentXMLFormat, bodyXML)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotWordDocument, err)
	}
	return &Document{
		parts: []part{
			{name: "[Content_Types].xml", method: zip.Deflate, data: []byte(contentTypesXML)},
			{name: "_rels/.rels", method: zip.Deflate, data: []byte(packageRelsXML)},
			{name: mainPart, method: zip.Deflate},
		},
		main: main,
	}, nil
}
