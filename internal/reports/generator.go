package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/fdg312/cookbook/internal/feed"
	"github.com/fdg312/cookbook/internal/nutrition"
	"github.com/jung-kurt/gofpdf"
)

// Generator renders a WeekNutrition as CSV or PDF.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Render(week feed.WeekNutrition, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return g.generateCSV(week)
	case FormatPDF:
		return g.generatePDF(week)
	default:
		return nil, ErrInvalidFormat
	}
}

// generateCSV пишет одну строку на день и итоговую строку total.
func (g *Generator) generateCSV(week feed.WeekNutrition) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "calories", "protein_g", "carbs_g", "fat_g"}); err != nil {
		return nil, err
	}
	for _, d := range week.Days {
		if err := w.Write(macroRow(d.Date, d.Totals)); err != nil {
			return nil, err
		}
	}
	if err := w.Write(macroRow("total", week.Totals)); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func macroRow(label string, m nutrition.Macros) []string {
	return []string{
		label,
		strconv.Itoa(m.Calories),
		strconv.Itoa(m.Protein),
		strconv.Itoa(m.Carbs),
		strconv.Itoa(m.Fat),
	}
}

// generatePDF uses the core Helvetica font; recipe titles go through the
// cp1252 translator.
func (g *Generator) generatePDF(week feed.WeekNutrition) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Weekly nutrition")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Week: %s to %s", week.From, week.To))
	pdf.Ln(12)

	// Summary
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	summary := []struct {
		label   string
		total   int
		goal    int
		percent int
		unit    string
	}{
		{"Calories", week.Totals.Calories, week.Goals.Calories, week.Progress.Calories, "kcal"},
		{"Protein", week.Totals.Protein, week.Goals.Protein, week.Progress.Protein, "g"},
		{"Carbs", week.Totals.Carbs, week.Goals.Carbs, week.Progress.Carbs, "g"},
	}
	for _, s := range summary {
		pdf.Cell(0, 6, fmt.Sprintf("%s: %d / %d %s (%d%%)", s.label, s.total, s.goal, s.unit, s.percent))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Fat: %d g", week.Totals.Fat))
	pdf.Ln(12)

	// Days table
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "Days")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	for i, h := range []string{"Date", "Calories", "Protein", "Carbs", "Fat"} {
		pdf.CellFormat(30, 6, h, "1", lineBreak(i, 4), "C", false, 0, "")
	}
	for _, d := range week.Days {
		cells := macroRow(d.Date, d.Totals)
		for i, c := range cells {
			pdf.CellFormat(30, 6, c, "1", lineBreak(i, len(cells)-1), "C", false, 0, "")
		}
	}
	pdf.Ln(8)

	if len(week.Contributors) > 0 {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Cell(0, 8, "Recipes")
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "", 9)
		for _, c := range week.Contributors {
			pdf.CellFormat(120, 6, tr(c.Title), "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, "x"+strconv.Itoa(c.Count), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 6, strconv.Itoa(c.PerServing.Calories)+" kcal", "1", 1, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func lineBreak(i, last int) int {
	if i == last {
		return 1
	}
	return 0
}
