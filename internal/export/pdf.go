// Package export writes nesting results to PDF cutting plans and QR-coded
// plate labels.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/platenest/internal/model"
	"github.com/piwi3910/platenest/internal/pathser"
)

// palette holds the fill colors of placed plates as 0xRRGGBB.
var palette = []uint32{0x4caf50, 0x2196f3, 0xff9800, 0x9c27b0, 0x00bcd4, 0xf44336, 0xffeb3b, 0x795548}

func paletteRGB(i int) (r, g, b int) {
	c := palette[i%len(palette)]
	return int(c >> 16 & 0xff), int(c >> 8 & 0xff), int(c & 0xff)
}

// A4 landscape, millimetres.
const (
	pageW     = 297.0
	pageH     = 210.0
	margin    = 15.0
	contentW  = pageW - 2*margin
	titleH    = 12.0
	footerH   = 20.0
	canvasTop = margin + titleH + 5
)

// planWriter renders a cutting plan. y is the write cursor of text pages.
type planWriter struct {
	pdf      *fpdf.Fpdf
	settings model.Settings
	y        float64
}

// ExportPDF writes a cutting plan: one page per sheet with the real plate
// outlines, holes left open, then a summary with statistics, per-sheet
// remnants and unplaced plates.
func ExportPDF(path string, result model.NestingResult, settings model.Settings) error {
	sheets := result.Sheets()
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, margin)
	w := &planWriter{pdf: pdf, settings: settings}
	for i, sheet := range sheets {
		w.sheetPage(sheet, i+1)
	}
	w.summary(result)
	return pdf.OutputFileAndClose(path)
}

// sheetTransform maps sheet millimetres to page coordinates. The sheet's
// y axis points up, the page's down.
type sheetTransform struct {
	scale, offsetX, offsetY, canvasH float64
}

func (t sheetTransform) point(x, y float64) (float64, float64) {
	return t.offsetX + x*t.scale, t.offsetY + t.canvasH - y*t.scale
}

func (w *planWriter) text(x, y, width, h float64, style string, size float64, s, align string) {
	w.pdf.SetFont("Helvetica", style, size)
	w.pdf.SetXY(x, y)
	w.pdf.CellFormat(width, h, s, "", 0, align, false, 0, "")
}

func (w *planWriter) sheetPage(sheet model.NestingSheet, n int) {
	pdf := w.pdf
	pdf.AddPage()
	w.text(margin, margin, contentW, titleH, "B", 14, fmt.Sprintf("Sheet %d: %s, %g mm (%.0f x %.0f mm)",
		n, sheet.Stock.Label, sheet.Thickness, sheet.Stock.Width, sheet.Stock.Height), "L")
	w.text(margin, margin+titleH, contentW, 5, "", 10, fmt.Sprintf("Plates: %d | Used: %.0f mm² of %.0f mm² | Utilization: %.1f%%",
		len(sheet.Placements), sheet.UsedArea(), sheet.TotalArea(), sheet.Utilization*100), "L")

	availH := pageH - canvasTop - margin - footerH
	scale := math.Min(contentW/sheet.Stock.Width, availH/sheet.Stock.Height)
	cw, ch := sheet.Stock.Width*scale, sheet.Stock.Height*scale
	tr := sheetTransform{scale: scale, offsetX: margin + (contentW-cw)/2, offsetY: canvasTop, canvasH: ch}

	pdf.SetFillColor(200, 204, 208)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(tr.offsetX, tr.offsetY, cw, ch, "FD")
	w.edgeMargin(sheet.Stock, tr)

	for i, p := range sheet.Placements {
		pdf.SetFillColor(paletteRGB(i))
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		drawPath(pdf, pathser.SerializePlacement(p), tr)
		w.placementLabel(p, tr)
	}

	w.dimensions(sheet.Stock, tr, cw, ch)
	w.legend(sheet, tr.offsetY+ch+5)
}

// placementLabel centres the plate name on its bounds when it fits.
func (w *planWriter) placementLabel(p model.Placement, tr sheetTransform) {
	b := p.Bounds()
	pw, ph := b.Width()*tr.scale, b.Height()*tr.scale
	if pw <= 15 || ph <= 8 {
		return
	}
	w.pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
	w.pdf.SetTextColor(0, 0, 0)
	s := plateLabel(p.Plate)
	sw := w.pdf.GetStringWidth(s)
	if sw >= pw-2 {
		return
	}
	cx, cy := tr.point((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2)
	w.text(cx-sw/2, cy-2, sw, 4, "", labelFontSize(pw, ph), s, "C")
}

// drawPath fills and strokes a plate path with the even-odd rule so holes
// stay visible.
func drawPath(pdf *fpdf.Fpdf, cmds []pathser.Command, tr sheetTransform) {
	for _, c := range cmds {
		switch c.Op {
		case pathser.MoveTo:
			pdf.MoveTo(tr.point(c.X, c.Y))
		case pathser.LineTo:
			pdf.LineTo(tr.point(c.X, c.Y))
		case pathser.Close:
			pdf.ClosePath()
		}
	}
	pdf.DrawPath("FD*")
}

// edgeMargin dashes the usable area when an edge margin is set.
func (w *planWriter) edgeMargin(stock model.StockSize, tr sheetTransform) {
	m := w.settings.EdgeMargin
	if m <= 0 {
		return
	}
	x, y := tr.point(m, stock.Height-m)
	w.pdf.SetDrawColor(200, 0, 0)
	w.pdf.SetLineWidth(0.15)
	w.pdf.SetDashPattern([]float64{1, 1}, 0)
	w.pdf.Rect(x, y, (stock.Width-2*m)*tr.scale, (stock.Height-2*m)*tr.scale, "D")
	w.pdf.SetDashPattern([]float64{}, 0)
}

// dimensions writes the stock width below the canvas and the height,
// rotated, to its left.
func (w *planWriter) dimensions(stock model.StockSize, tr sheetTransform, cw, ch float64) {
	pdf := w.pdf
	pdf.SetTextColor(80, 80, 80)
	w.text(tr.offsetX, tr.offsetY+ch+1, cw, 4, "", 8, fmt.Sprintf("%.0f mm", stock.Width), "C")

	cx, cy := tr.offsetX-3, tr.offsetY+ch/2
	pdf.TransformBegin()
	pdf.TransformRotate(90, cx, cy)
	w.text(cx-20, cy-2, 40, 4, "", 8, fmt.Sprintf("%.0f mm", stock.Height), "C")
	pdf.TransformEnd()
	pdf.SetTextColor(0, 0, 0)
}

// legend lists the sheet's plates with their colour swatch, wrapping lines.
func (w *planWriter) legend(sheet model.NestingSheet, y float64) {
	if len(sheet.Placements) == 0 {
		return
	}
	pdf := w.pdf
	pdf.SetTextColor(0, 0, 0)
	w.text(margin, y, 30, 4, "B", 8, "Plates placed:", "L")

	pdf.SetFont("Helvetica", "", 7)
	x := margin + 32
	for i, p := range sheet.Placements {
		bb := p.Plate.BoundingBox
		entry := fmt.Sprintf("%s (%.0fx%.0f)", plateLabel(p.Plate), bb.Width(), bb.Height())
		if p.Plate.Approximate {
			entry += " ~"
		}
		ew := pdf.GetStringWidth(entry) + 6
		if x+ew > pageW-margin {
			x, y = margin, y+5
		}
		pdf.SetFillColor(paletteRGB(i))
		pdf.Rect(x, y+0.5, 3, 3, "F")
		pdf.SetXY(x+4, y)
		pdf.CellFormat(ew-4, 4, entry, "", 0, "L", false, 0, "")
		x += ew + 2
	}
}

// need starts a new page when fewer than h millimetres remain.
func (w *planWriter) need(h float64) {
	if w.y+h > pageH-margin {
		w.pdf.AddPage()
		w.y = margin
	}
}

func (w *planWriter) heading(s string) {
	w.y += 5
	w.need(16)
	w.text(margin, w.y, contentW, 7, "B", 12, s, "L")
	w.y += 9
}

// pairs writes label: value rows.
func (w *planWriter) pairs(rows [][2]string) {
	for _, r := range rows {
		w.need(6)
		w.text(margin+5, w.y, 60, 6, "", 10, r[0]+":", "L")
		w.text(margin+65, w.y, 60, 6, "B", 10, r[1], "L")
		w.y += 6
	}
}

// table writes a bordered grid with a shaded header row and banded rows.
// The header is repeated after a page break.
func (w *planWriter) table(widths []float64, header []string, rows [][]string) {
	row := func(cells []string, style string, shade int) {
		w.pdf.SetFont("Helvetica", style, 9)
		w.pdf.SetFillColor(shade, shade, shade)
		x := margin
		for i, c := range cells {
			w.pdf.SetXY(x, w.y)
			w.pdf.CellFormat(widths[i], 6, c, "1", 0, "C", true, 0, "")
			x += widths[i]
		}
		w.y += 6
	}
	w.need(12)
	row(header, "B", 230)
	for i, r := range rows {
		if w.y+6 > pageH-margin {
			w.need(12)
			row(header, "B", 230)
		}
		shade := 255
		if i%2 == 0 {
			shade = 245
		}
		row(r, "", shade)
	}
}

func (w *planWriter) summary(result model.NestingResult) {
	pdf := w.pdf
	pdf.AddPage()
	pdf.SetTextColor(0, 0, 0)
	w.text(margin, margin, contentW, 10, "B", 16, "Nesting Summary", "L")
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(margin, margin+12, pageW-margin, margin+12)
	w.y = margin + 13

	st := result.Stats
	w.heading("Overall Statistics")
	overall := [][2]string{
		{"Total Sheets Used", fmt.Sprintf("%d", st.TotalSheets)},
		{"Overall Utilization", fmt.Sprintf("%.1f%%", st.OverallUtilization*100)},
		{"Plates Placed", fmt.Sprintf("%d of %d", st.PlacedPlates, st.TotalPlates)},
		{"Approximate Plates", fmt.Sprintf("%d", st.ApproximatePlates)},
		{"Plate Mass", fmt.Sprintf("%.1f kg", st.PlateMassKg)},
		{"Waste Mass", fmt.Sprintf("%.1f kg", st.WasteMassKg)},
	}
	if result.Incomplete {
		overall = append(overall, [2]string{"Status", "Incomplete (cancelled)"})
	}
	w.pairs(overall)

	w.heading("Sheet Breakdown")
	var rows [][]string
	for i, sheet := range result.Sheets() {
		remnants := model.DetectRemnants(sheet, w.settings.Spacing, w.settings.MinRemnantDimension, w.settings.MinRemnantArea)
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%g mm", sheet.Thickness),
			sheet.Stock.Label,
			fmt.Sprintf("%.0f x %.0f mm", sheet.Stock.Width, sheet.Stock.Height),
			fmt.Sprintf("%d", len(sheet.Placements)),
			fmt.Sprintf("%.1f%%", sheet.Utilization*100),
			fmt.Sprintf("%.0f mm²", model.TotalRemnantArea(remnants)),
		})
	}
	w.table([]float64{20, 30, 60, 50, 30, 35, 42},
		[]string{"Sheet", "Thickness", "Stock", "Dimensions", "Plates", "Utilization", "Remnant Area"}, rows)

	if len(result.Unplaced) > 0 {
		pdf.SetTextColor(200, 0, 0)
		w.heading("WARNING: Unplaced Plates")
		pdf.SetTextColor(0, 0, 0)
		for _, u := range result.Unplaced {
			w.need(5)
			w.text(margin+5, w.y, contentW-5, 5, "", 9, "- "+unplacedText(u), "L")
			w.y += 5
		}
	}

	w.heading("Nesting Settings")
	w.pairs([][2]string{
		{"Mode", string(w.settings.Mode)},
		{"Spacing", fmt.Sprintf("%.1f mm", w.settings.Spacing)},
		{"Edge Margin", fmt.Sprintf("%.1f mm", w.settings.EdgeMargin)},
		{"Hole Clearance", fmt.Sprintf("%.1f mm", w.settings.HoleClearance)},
	})

	pdf.SetTextColor(120, 120, 120)
	w.text(margin, pageH-margin, contentW, 4, "I", 8, "Generated by PlateNest", "C")
}

func unplacedText(u model.UnplacedPlate) string {
	if u.Plate == nil {
		return u.ReasonText()
	}
	bb := u.Plate.BoundingBox
	return fmt.Sprintf("%s: %.0f x %.0f x %g mm (%s)",
		plateLabel(u.Plate), bb.Width(), bb.Height(), u.Plate.Thickness, u.ReasonText())
}

// plateLabel prefers the element name and falls back to its source id.
func plateLabel(pg *model.PlateGeometry) string {
	if pg.Name != "" {
		return pg.Name
	}
	return pg.SourceID
}

// labelFontSize picks 8, 7 or 6 pt from the smaller side of the plate on
// the page.
func labelFontSize(w, h float64) float64 {
	switch m := math.Min(w, h); {
	case m > 40:
		return 8
	case m > 20:
		return 7
	}
	return 6
}
