package report

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const pdfFamily = "jp"

var linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`) // [text](url)

// WritePDF renders the Markdown report to outPath. Japanese text needs a
// UTF-8 TrueType font, so fontPath is required. Headings, table rows and
// links are laid out simply; this is not a full Markdown renderer.
func WritePDF(markdown, outPath, fontPath string) error {
	if strings.TrimSpace(fontPath) == "" {
		return errors.New("pdf output needs a TrueType font with Japanese glyphs (-pdf.font)")
	}
	if _, err := os.Stat(fontPath); err != nil {
		return fmt.Errorf("pdf font: %w", err)
	}
	pdf := gofpdf.New("P", "mm", "A4", filepath.Dir(fontPath))
	pdf.AddUTF8Font(pdfFamily, "", filepath.Base(fontPath))
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("load pdf font: %w", err)
	}
	pdf.SetFont(pdfFamily, "", 10)
	pdf.AddPage()

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		switch {
		case s == "":
			pdf.Ln(3)
		case s == "---":
			y := pdf.GetY() + 2
			pdf.Line(10, y, 200, y)
			pdf.Ln(5)
		case strings.HasPrefix(s, "#"):
			i := 0
			for i < len(s) && s[i] == '#' {
				i++
			}
			text := strings.TrimSpace(s[i:])
			if text == "" {
				continue
			}
			size := 16.0
			switch i {
			case 2:
				size = 13
			case 3:
				size = 11
			}
			pdf.SetFont(pdfFamily, "", size)
			pdf.MultiCell(0, size*0.55, text, "", "L", false)
			pdf.SetFont(pdfFamily, "", 10)
		case strings.HasPrefix(s, "|"):
			writeTableRow(pdf, s)
		default:
			writeInline(pdf, strings.TrimPrefix(s, "> "))
		}
	}
	if err := scanner.Err(); err != nil {
		pdf.Close()
		return err
	}
	return pdf.OutputFileAndClose(outPath)
}

func writeTableRow(pdf *gofpdf.Fpdf, row string) {
	cells := strings.Split(strings.Trim(row, "|"), " | ")
	if len(cells) < 2 {
		return
	}
	key := strings.TrimSpace(cells[0])
	val := strings.TrimSpace(strings.Join(cells[1:], " | "))
	if strings.Trim(key, "-") == "" || key == "項目" {
		return
	}
	val = strings.ReplaceAll(val, "<br>", "\n")
	val = strings.ReplaceAll(val, "\\|", "|")
	pdf.MultiCell(0, 5, key+"："+val, "", "L", false)
}

func writeInline(pdf *gofpdf.Fpdf, s string) {
	parts := linkRe.FindAllStringSubmatchIndex(s, -1)
	if len(parts) == 0 {
		pdf.MultiCell(0, 5, s, "", "L", false)
		return
	}
	pos := 0
	for _, m := range parts {
		if m[0] > pos {
			pdf.Write(5, s[pos:m[0]])
		}
		pdf.WriteLinkString(5, s[m[2]:m[3]], s[m[4]:m[5]])
		pos = m[1]
	}
	if pos < len(s) {
		pdf.Write(5, s[pos:])
	}
	pdf.Ln(6)
}
