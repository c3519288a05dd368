// Package pdfextract pulls page-ordered text out of PDF files.
package pdfextract

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/ledongthuc/pdf"
)

// Page holds the extracted text of one page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// ExtractPages reads the entire content of r and extracts text page by page,
// preserving reading order: text rows ordered top-to-bottom, runs within a row
// left-to-right, rows joined with a blank line. A page that fails to parse
// yields empty text rather than failing the whole document; callers skip
// blank pages.
func ExtractPages(r io.Reader) ([]Page, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf input failed: %w", err)
	}
	if len(b) == 0 {
		return nil, nil
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}

	pages := make([]Page, 0, pdfReader.NumPage())
	for n := 1; n <= pdfReader.NumPage(); n++ {
		pages = append(pages, Page{Number: n, Text: extractPageText(pdfReader.Page(n))})
	}
	return pages, nil
}

// extractPageText never fails: malformed pages come back empty.
func extractPageText(page pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if page.V.IsNull() {
		return ""
	}
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}

	// Rows carry their vertical position; larger is higher on the page.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})

	var blocks []string
	for _, row := range rows {
		content := row.Content
		sort.SliceStable(content, func(i, j int) bool {
			return content[i].X < content[j].X
		})
		var b bytes.Buffer
		for _, run := range content {
			b.WriteString(run.S)
		}
		if line := b.String(); line != "" {
			blocks = append(blocks, line)
		}
	}

	var out bytes.Buffer
	for i, block := range blocks {
		if i > 0 {
			out.WriteString("\n\n")
		}
		out.WriteString(block)
	}
	return out.String()
}
