package report

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"

	"GovernanceWeekly/internal/domain"
	"GovernanceWeekly/internal/ports"
)

const (
	fontFamily  = "Helvetica"
	starFont    = "ZapfDingbats"
	starGlyph   = "H"
	noSummary   = "No summary available."
	marginMM    = 20.0
	lineTitle   = 5.5
	lineMeta    = 4.0
	lineSummary = 4.6
)

// Stars maps an impact score to the one to five star marker printed before a title.
func Stars(impact float64) int {
	switch {
	case impact >= 40:
		return 5
	case impact >= 30:
		return 4
	case impact >= 20:
		return 3
	case impact >= 15:
		return 2
	default:
		return 1
	}
}

// PDFRenderer draws the weekly report with the core PDF fonts.
type PDFRenderer struct {
	compress bool
}

var _ ports.ReportRenderer = (*PDFRenderer)(nil)

// NewPDFRenderer builds a renderer producing compressed output.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{compress: true}
}

// Render writes the report as A4 PDF into w.
func (r *PDFRenderer) Render(w io.Writer, report domain.Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(report.Title, true)
	pdf.SetAuthor("GovernanceWeekly", false)
	pdf.SetCreator("GovernanceWeekly", false)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(latin(s)) }

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	r.cover(pdf, report, text)

	for _, section := range report.Sections {
		if len(section.Articles) == 0 {
			continue
		}
		pdf.Ln(4)
		pdf.SetFont(fontFamily, "B", 14)
		pdf.SetTextColor(0, 0, 139)
		pdf.MultiCell(0, 7, text(fmt.Sprintf("%s (%d articles)", section.Category, len(section.Articles))), "", "L", false)
		pdf.Ln(2)

		for _, art := range section.Articles {
			r.entry(pdf, art, text)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (r *PDFRenderer) cover(pdf *fpdf.Fpdf, report domain.Report, text func(string) string) {
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(fontFamily, "B", 20)
	pdf.MultiCell(0, 10, text(report.Title), "", "L", false)

	pdf.SetFont(fontFamily, "", 11)
	if report.Subtitle != "" {
		pdf.MultiCell(0, 6, text(report.Subtitle), "", "L", false)
	}
	pdf.MultiCell(0, 6, text("Date Range: "+report.DateRange()), "", "L", false)
	pdf.Ln(4)

	if report.Blurb != "" {
		pdf.SetFont(fontFamily, "I", 11)
		pdf.MultiCell(0, 6, text(report.Blurb), "", "L", false)
	}
	pdf.Ln(4)
}

func (r *PDFRenderer) entry(pdf *fpdf.Fpdf, art domain.Article, text func(string) string) {
	pdf.Ln(2)
	pdf.SetTextColor(218, 165, 32)
	pdf.SetFont(starFont, "", 9)
	pdf.Write(lineTitle, strings.Repeat(starGlyph, Stars(art.ImpactScore))+" ")

	title := art.DisplayTitle()
	if strings.TrimSpace(title) == "" {
		title = "Untitled"
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(fontFamily, "B", 11)
	pdf.Write(lineTitle, text(title))
	pdf.Ln(lineTitle + 1)

	pdf.SetFont(fontFamily, "", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Write(lineMeta, "Source: ")
	pdf.SetTextColor(0, 0, 255)
	pdf.WriteLinkString(lineMeta, text(art.URL), art.URL)
	pdf.SetTextColor(128, 128, 128)
	pdf.Write(lineMeta, text(fmt.Sprintf(" | %s | Impact: %.1f", published(art), art.ImpactScore)))
	pdf.Ln(lineMeta + 1)

	summary := strings.TrimSpace(art.Summary)
	if summary == "" {
		summary = noSummary
	}
	pdf.SetFont(fontFamily, "", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, lineSummary, text(summary), "", "J", false)
	pdf.Ln(3)
}

func published(art domain.Article) string {
	if art.PublishedAt.IsZero() {
		return "Unknown Date"
	}
	return art.PublishedAt.Format("Jan 2, 2006")
}

var replacements = strings.NewReplacer(
	"‘", "'", "’", "'", "“", `"`, "”", `"`,
	"–", "-", "—", "-", "…", "...", " ", " ",
	"।", ".", "॥", ".",
)

// latin reduces s to runes the core fonts can draw; other scripts are dropped.
func latin(s string) string {
	s = replacements.Replace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r < 0x20:
		case r <= 0xFF:
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.FieldsFunc(b.String(), func(r rune) bool { return r == ' ' }), " ")
}
