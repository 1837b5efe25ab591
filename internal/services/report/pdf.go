package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	pdfFont      = "Arial"
	pdfBodySize  = 10.0
	pdfLineH     = 5.0
	pdfPageWidth = 190.0 // A4 minus 10mm margins
)

// RenderPDF lays out a markdown report on A4 pages.
// Headings, paragraphs, emphasis, bullet lists and tables are supported.
func RenderPDF(md, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont(pdfFont, "", pdfBodySize)

	source := []byte(md)
	doc := markdown.Parser().Parse(text.NewReader(source))

	w := &pdfWriter{
		pdf:       pdf,
		source:    source,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
	if err := ast.Walk(doc, w.walk); err != nil {
		return nil, fmt.Errorf("failed to lay out PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfWriter struct {
	pdf       *fpdf.Fpdf
	source    []byte
	translate func(string) string
	bold      bool
	italic    bool
	size      float64
}

func (w *pdfWriter) setFont() {
	style := ""
	if w.bold {
		style += "B"
	}
	if w.italic {
		style += "I"
	}
	size := w.size
	if size == 0 {
		size = pdfBodySize
	}
	w.pdf.SetFont(pdfFont, style, size)
}

func (w *pdfWriter) write(s string) {
	w.pdf.Write(pdfLineH, w.translate(s))
}

func (w *pdfWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			w.pdf.Ln(4)
			w.bold = true
			w.size = map[int]float64{1: 16, 2: 13}[node.Level]
			if w.size == 0 {
				w.size = 11
			}
		} else {
			w.bold = false
			w.size = 0
			w.pdf.Ln(7)
		}
		w.setFont()

	case *ast.Paragraph:
		if !entering {
			w.pdf.Ln(pdfLineH + 2)
		}

	case *ast.Text:
		if entering {
			w.write(string(node.Segment.Value(w.source)))
			if node.HardLineBreak() {
				w.pdf.Ln(pdfLineH)
			} else if node.SoftLineBreak() {
				w.write(" ")
			}
		}

	case *ast.Emphasis:
		if node.Level == 2 {
			w.bold = entering
		} else {
			w.italic = entering
		}
		w.setFont()

	case *ast.ListItem:
		if entering {
			w.pdf.SetX(15)
			w.write("- ")
		} else {
			w.pdf.Ln(pdfLineH)
		}

	case *ast.List:
		if !entering {
			w.pdf.Ln(2)
		}

	case *extast.Table:
		if entering {
			w.table(node)
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (w *pdfWriter) table(t *extast.Table) {
	var rows [][]string
	for child := t.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *extast.TableHeader, *extast.TableRow:
			var row []string
			for cell := child.FirstChild(); cell != nil; cell = cell.NextSibling() {
				row = append(row, w.translate(inlineText(cell, w.source)))
			}
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	colWidth := pdfPageWidth / float64(len(rows[0]))
	rowHeight := 7.0
	for i, row := range rows {
		if i == 0 {
			w.pdf.SetFont(pdfFont, "B", 9)
			w.pdf.SetFillColor(230, 230, 230)
		} else {
			w.pdf.SetFont(pdfFont, "", 9)
			w.pdf.SetFillColor(255, 255, 255)
		}
		for _, cell := range row {
			w.pdf.CellFormat(colWidth, rowHeight, cell, "1", 0, "L", true, 0, "")
		}
		w.pdf.Ln(-1)
	}
	w.pdf.Ln(3)
	w.setFont()
}

// inlineText concatenates the text segments below n
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
