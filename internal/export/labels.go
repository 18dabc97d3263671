package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/platenest/internal/model"
	"github.com/piwi3910/platenest/internal/pathser"
)

// LabelInfo is the payload of a plate label's QR code.
type LabelInfo struct {
	SourceID   string  `json:"source_id"`
	Name       string  `json:"name,omitempty"`
	Thickness  float64 `json:"thickness_mm"`
	Width      float64 `json:"width_mm"`
	Height     float64 `json:"height_mm"`
	Holes      int     `json:"holes"`
	SheetIndex int     `json:"sheet"`
	SheetID    string  `json:"sheet_id"`
	SheetLabel string  `json:"sheet_label"`
	X          float64 `json:"x_mm"`
	Y          float64 `json:"y_mm"`
}

// A4 label stock, 3 x 8 labels of 70 x 37 mm without gaps.
const (
	labelCols     = 3
	labelRows     = 8
	labelsPerPage = labelCols * labelRows
	labelW        = 70.0
	labelH        = 37.0
	labelTop      = 0.5
	labelPad      = 2.0
	qrSide        = 22.0
	thumbSide     = 14.0
)

// labelCell returns the top-left corner of label i on its page.
func labelCell(i int) (x, y float64) {
	slot := i % labelsPerPage
	return float64(slot%labelCols) * labelW, labelTop + float64(slot/labelCols)*labelH
}

// ExportLabels writes one QR label per placed plate, in cutting order.
// Each label carries the plate id, thickness, size, sheet position and an
// outline thumbnail; the QR code holds LabelInfo as JSON.
func ExportLabels(path string, result model.NestingResult) error {
	sheets := result.Sheets()
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to generate labels for")
	}
	infos := CollectLabelInfos(result)
	if len(infos) == 0 {
		return fmt.Errorf("no plates placed to generate labels for")
	}

	plates := make([]*model.PlateGeometry, 0, len(infos))
	for _, sheet := range sheets {
		for _, p := range sheet.Placements {
			plates = append(plates, p.Plate)
		}
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	for i, info := range infos {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		x, y := labelCell(i)
		if err := renderLabel(pdf, x, y, i, info, plates[i]); err != nil {
			return fmt.Errorf("label for %q: %w", info.SourceID, err)
		}
	}
	return pdf.OutputFileAndClose(path)
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, idx int, info LabelInfo, plate *model.PlateGeometry) error {
	pdf.SetDrawColor(210, 210, 210)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelW, labelH, "D")

	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("QR code: %w", err)
	}
	name := fmt.Sprintf("qr_%d", idx)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, x+labelW-qrSide-labelPad, y+(labelH-qrSide)/2, qrSide, qrSide, false, opts, 0, "")

	textW := labelW - qrSide - 3*labelPad
	title := info.Name
	if title == "" {
		title = info.SourceID
	}
	lines := []struct {
		style string
		size  float64
		gray  int
		text  string
	}{
		{"B", 9, 0, title},
		{"", 7, 0, fmt.Sprintf("%g mm | %.0f x %.0f", info.Thickness, info.Width, info.Height)},
		{"", 6, 90, fmt.Sprintf("Sheet %d @ %.0f, %.0f", info.SheetIndex, info.X, info.Y)},
	}
	if info.Holes > 0 {
		lines = append(lines, struct {
			style string
			size  float64
			gray  int
			text  string
		}{"", 6, 90, fmt.Sprintf("%d holes", info.Holes)})
	}

	ty := y + labelPad
	for _, l := range lines {
		pdf.SetFont("Helvetica", l.style, l.size)
		pdf.SetTextColor(l.gray, l.gray, l.gray)
		pdf.SetXY(x+labelPad, ty)
		pdf.CellFormat(textW, l.size*0.45, fitText(pdf, l.text, textW), "", 0, "L", false, 0, "")
		ty += l.size*0.45 + 0.6
	}
	pdf.SetTextColor(0, 0, 0)

	if plate != nil {
		drawThumbnail(pdf, plate, x+labelPad, y+labelH-labelPad-thumbSide, textW)
	}
	return nil
}

// drawThumbnail draws the plate outline with holes, scaled into a box of
// thumbSide height and at most maxW width with its top-left corner at x, y.
func drawThumbnail(pdf *fpdf.Fpdf, plate *model.PlateGeometry, x, y, maxW float64) {
	bb := plate.BoundingBox
	if bb.Width() <= 0 || bb.Height() <= 0 {
		return
	}
	scale := math.Min(maxW/bb.Width(), thumbSide/bb.Height())
	tr := sheetTransform{scale: scale, offsetX: x, offsetY: y, canvasH: bb.Height() * scale}

	pdf.SetDrawColor(60, 60, 60)
	pdf.SetFillColor(225, 225, 225)
	pdf.SetLineWidth(0.1)
	drawPath(pdf, pathser.SerializePlacement(model.Placement{Plate: plate}), tr)
}

// fitText shortens s with an ellipsis until it fits w at the current font.
func fitText(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > w {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

// CollectLabelInfos returns one LabelInfo per placement in sheet order
// (thickness ascending, then packing order). SheetIndex is 1-based.
func CollectLabelInfos(result model.NestingResult) []LabelInfo {
	var infos []LabelInfo
	for i, sheet := range result.Sheets() {
		for _, p := range sheet.Placements {
			bb := p.Plate.BoundingBox
			infos = append(infos, LabelInfo{
				SourceID:   p.Plate.SourceID,
				Name:       p.Plate.Name,
				Thickness:  p.Plate.Thickness,
				Width:      bb.Width(),
				Height:     bb.Height(),
				Holes:      len(p.Plate.Holes),
				SheetIndex: i + 1,
				SheetID:    sheet.ID,
				SheetLabel: sheet.Stock.Label,
				X:          p.X,
				Y:          p.Y,
			})
		}
	}
	return infos
}
