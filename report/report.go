// Package report renders a period's analysis into a PDF or plain text
// document: AI summary, counterpart top-10 table with a frequency chart,
// and the extracted keyword table. Purely a consumer of query and analyze
// outputs.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"calldesk/analyze"
	"calldesk/query"
)

// Data carries everything one report needs.
type Data struct {
	Year         int
	Month        int
	Summary      string
	Counterparts []query.Count
	Keywords     []analyze.Keyword

	// FontPath points at a UTF-8 TTF with Japanese glyphs. Without it the
	// PDF falls back to the built-in Helvetica and CJK text will garble;
	// the text rendering path does not depend on it.
	FontPath string
}

// Filename returns the conventional download name for a period.
func Filename(year, month int, ext string) string {
	return fmt.Sprintf("report_%d_%d.%s", year, month, ext)
}

// RenderText produces the plain-text variant of the report.
func RenderText(d Data) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d年%d月 電話対応分析レポート\n\n", d.Year, d.Month)
	b.WriteString("【AI分析サマリー】\n")
	b.WriteString(strings.TrimSpace(d.Summary))
	b.WriteString("\n")
	if len(d.Counterparts) > 0 {
		b.WriteString("\n【相手先件数ランキング（TOP10）】\n")
		for i, c := range query.Top(d.Counterparts, 10) {
			fmt.Fprintf(&b, "%2d. %s (%d件)\n", i+1, c.Counterpart, c.Calls)
		}
	}
	if len(d.Keywords) > 0 {
		b.WriteString("\n【頻出キーワード（AI抽出）】\n")
		for _, kw := range d.Keywords {
			fmt.Fprintf(&b, "%s: %d回\n", kw.Word, kw.Count)
		}
	}
	return b.String()
}

// RenderPDF produces the PDF variant of the report.
func RenderPDF(d Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")

	family := "Helvetica"
	if d.FontPath != "" {
		family = "report"
		pdf.AddUTF8Font(family, "", d.FontPath)
	}
	pdf.AddPage()

	pdf.SetFont(family, "", 16)
	pdf.CellFormat(0, 12, fmt.Sprintf("%d年%d月 電話対応分析レポート", d.Year, d.Month), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	writeHeading(pdf, family, "【AI分析サマリー】")
	pdf.SetFont(family, "", 10)
	for _, line := range strings.Split(d.Summary, "\n") {
		if strings.TrimSpace(line) == "" {
			pdf.Ln(2)
			continue
		}
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
	pdf.Ln(8)

	if len(d.Counterparts) > 0 {
		writeHeading(pdf, family, "【相手先件数ランキング（TOP10）】")
		writeCounterpartTable(pdf, family, query.Top(d.Counterparts, 10))

		png, err := chartPNG(query.Top(d.Counterparts, 10))
		if err != nil {
			return nil, err
		}
		if png != nil {
			opts := fpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader("counterpart-chart", opts, bytes.NewReader(png))
			pdf.ImageOptions("counterpart-chart", 20, 0, 120, 0, true, opts, 0, "")
		}
		pdf.Ln(8)
	}

	if len(d.Keywords) > 0 {
		writeHeading(pdf, family, "【頻出キーワード（AI抽出）】")
		writeKeywordTable(pdf, family, d.Keywords)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeading(pdf *fpdf.Fpdf, family, text string) {
	pdf.SetFont(family, "", 12)
	pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func writeCounterpartTable(pdf *fpdf.Fpdf, family string, counts []query.Count) {
	pdf.SetFont(family, "", 10)
	pdf.SetFillColor(0xD3, 0xD3, 0xD3)
	pdf.CellFormat(20, 7, "順位", "1", 0, "L", true, 0, "")
	pdf.CellFormat(90, 7, "相手先名", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "件数", "1", 1, "L", true, 0, "")
	for i, c := range counts {
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", i+1), "1", 0, "L", false, 0, "")
		pdf.CellFormat(90, 7, c.Counterpart, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", c.Calls), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func writeKeywordTable(pdf *fpdf.Fpdf, family string, keywords []analyze.Keyword) {
	pdf.SetFont(family, "", 10)
	pdf.SetFillColor(0xD3, 0xD3, 0xD3)
	pdf.CellFormat(90, 7, "キーワード", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "回数", "1", 1, "L", true, 0, "")
	for _, kw := range keywords {
		pdf.CellFormat(90, 7, kw.Word, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", kw.Count), "1", 1, "L", false, 0, "")
	}
}
