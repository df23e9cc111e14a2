package sitemap

import (
	"bufio"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/romangod6/company-sitemaps/internal/models"
)

const (
	Namespace      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	XSINamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation = "http://www.sitemaps.org/schemas/sitemap/0.9/sitemap.xsd"

	indent = "    "
)

// Writer emits sitemap XML with four-space indentation. The first write error
// is kept and every later call becomes a no-op; check it with Err or Flush.
type Writer struct {
	w   *bufio.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.WriteString(s)
}

func (w *Writer) text(s string) {
	if w.err != nil {
		return
	}
	w.err = xml.EscapeText(w.w, []byte(s))
}

func (w *Writer) element(depth int, name, value string) {
	for i := 0; i < depth; i++ {
		w.raw(indent)
	}
	w.raw("<" + name + ">")
	w.text(value)
	w.raw("</" + name + ">\n")
}

// StartURLSet writes the XML declaration and the opening <urlset> tag with the
// sitemap and XML-Schema-instance namespaces.
func (w *Writer) StartURLSet() {
	w.raw(xml.Header)
	w.raw(`<urlset xmlns="` + Namespace + `"` + "\n")
	w.raw(`        xmlns:xsi="` + XSINamespace + `"` + "\n")
	w.raw(`        xsi:schemaLocation="` + Namespace + "\n")
	w.raw(`        ` + SchemaLocation + `">` + "\n")
}

func (w *Writer) EndURLSet() {
	w.raw("</urlset>\n")
}

// StartIndex writes the XML declaration and the opening <sitemapindex> tag.
func (w *Writer) StartIndex() {
	w.raw(xml.Header)
	w.raw(`<sitemapindex xmlns="` + Namespace + `">` + "\n")
}

func (w *Writer) EndIndex() {
	w.raw("</sitemapindex>\n")
}

// URL writes one <url> block. Empty optional fields are omitted.
func (w *Writer) URL(u models.URL) {
	w.raw(indent + "<url>\n")
	w.element(2, "loc", u.Loc)
	if u.LastMod != "" {
		w.element(2, "lastmod", u.LastMod)
	}
	if u.ChangeFreq != "" {
		w.element(2, "changefreq", u.ChangeFreq)
	}
	if u.Priority != "" {
		w.element(2, "priority", u.Priority)
	}
	w.raw(indent + "</url>\n")
}

// Sitemap writes one <sitemap> block of a sitemap index.
func (w *Writer) Sitemap(f models.SitemapFile) {
	w.raw(indent + "<sitemap>\n")
	w.element(2, "loc", f.Loc)
	if f.LastMod != "" {
		w.element(2, "lastmod", f.LastMod)
	}
	w.raw(indent + "</sitemap>\n")
}

func (w *Writer) Err() error {
	return w.err
}

// Flush writes any buffered data and returns the first error seen.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

// FormatPriority renders a priority with at least one decimal place, e.g. 1.0 or 0.8.
func FormatPriority(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
