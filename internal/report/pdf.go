package report

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// A4 portrait, in points.
const (
	pageWidth    = 595.0
	pageHeight   = 842.0
	marginLeft   = 40.0
	marginBottom = 40.0
	rowHeight    = 16.0
	tableFont    = 9.0
	titleFont    = 18.0
	subtitleFont = 12.0
)

type pdfColumn struct {
	title string
	width float64
}

var pdfColumns = []pdfColumn{
	{title: "Nome", width: 130},
	{title: "Data", width: 62},
	{title: "Presente", width: 52},
	{title: "Entrada", width: 48},
	{title: "Saída", width: 48},
	{title: "Observações", width: 175},
}

var winAnsi = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

// buildTablePDF renders a titled grid table, repeating the header row on
// every page. Text is written with the standard Helvetica font in
// WinAnsiEncoding so pt-BR accents survive.
func buildTablePDF(title, subtitle string, rows [][]string) ([]byte, error) {
	var pages []string
	var page strings.Builder

	y := pageHeight - 50
	page.WriteString(textOp(title, "F2", titleFont, marginLeft, y))
	y -= 22
	if subtitle != "" {
		page.WriteString(textOp(subtitle, "F1", subtitleFont, marginLeft, y))
		y -= 20
	}
	y = writeHeaderRow(&page, y)

	for _, row := range rows {
		if y-rowHeight < marginBottom {
			pages = append(pages, page.String())
			page.Reset()
			y = writeHeaderRow(&page, pageHeight-50)
		}
		y = writeBodyRow(&page, row, y)
	}
	pages = append(pages, page.String())

	return assemblePDF(pages)
}

func writeHeaderRow(b *strings.Builder, top float64) float64 {
	bottom := top - rowHeight
	// header tabel: latar biru, teks putih
	b.WriteString(fmt.Sprintf("0.161 0.502 0.725 rg\n%.2f %.2f %.2f %.2f re f\n", marginLeft, bottom, tableWidth(), rowHeight))
	b.WriteString("1 1 1 rg\n")
	x := marginLeft
	for _, col := range pdfColumns {
		b.WriteString(textOp(col.title, "F2", tableFont, x+3, bottom+5))
		x += col.width
	}
	b.WriteString("0 0 0 rg\n")
	writeGrid(b, bottom)
	return bottom
}

func writeBodyRow(b *strings.Builder, row []string, top float64) float64 {
	bottom := top - rowHeight
	x := marginLeft
	for i, col := range pdfColumns {
		cell := ""
		if i < len(row) {
			cell = fitCell(row[i], col.width)
		}
		b.WriteString(textOp(cell, "F1", tableFont, x+3, bottom+5))
		x += col.width
	}
	writeGrid(b, bottom)
	return bottom
}

func writeGrid(b *strings.Builder, bottom float64) {
	b.WriteString("0.5 w 0.7 0.7 0.7 RG\n")
	x := marginLeft
	for _, col := range pdfColumns {
		b.WriteString(fmt.Sprintf("%.2f %.2f %.2f %.2f re S\n", x, bottom, col.width, rowHeight))
		x += col.width
	}
}

func tableWidth() float64 {
	w := 0.0
	for _, col := range pdfColumns {
		w += col.width
	}
	return w
}

// fitCell truncates v to what roughly fits width at the table font size.
func fitCell(v string, width float64) string {
	maxChars := int((width - 6) / (tableFont * 0.5))
	runes := []rune(v)
	if len(runes) <= maxChars {
		return v
	}
	if maxChars <= 3 {
		return string(runes[:maxChars])
	}
	return string(runes[:maxChars-3]) + "..."
}

func textOp(v, font string, size, x, y float64) string {
	return fmt.Sprintf("BT /%s %.1f Tf %.2f %.2f Td (%s) Tj ET\n", font, size, x, y, pdfEscape(v))
}

// assemblePDF lays out catalog, page tree, two fonts and one page plus one
// content stream per page, then writes the xref table.
func assemblePDF(pages []string) ([]byte, error) {
	const fontObjects = 2
	firstPage := 3 + fontObjects

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", firstPage+i*2)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>",
	}
	for i, content := range pages {
		pageObj := firstPage + i*2
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.0f %.0f] /Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>",
				pageWidth, pageHeight, pageObj+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objects)+1)
	offsets = append(offsets, 0)

	for i, obj := range objects {
		offsets = append(offsets, out.Len())
		out.WriteString(fmt.Sprintf("%d 0 obj\n%s\nendobj\n", i+1, obj))
	}

	xrefStart := out.Len()
	out.WriteString(fmt.Sprintf("xref\n0 %d\n", len(offsets)))
	out.WriteString("0000000000 65535 f \n")
	for i := 1; i < len(offsets); i++ {
		out.WriteString(fmt.Sprintf("%010d 00000 n \n", offsets[i]))
	}
	out.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets), xrefStart))

	return out.Bytes(), nil
}

// pdfEscape converts v to WinAnsi bytes and escapes the string delimiters.
func pdfEscape(v string) string {
	encoded, err := winAnsi.String(v)
	if err != nil {
		encoded = v
	}
	replacer := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return replacer.Replace(encoded)
}
