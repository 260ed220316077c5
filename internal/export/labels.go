package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/RebarCut/internal/model"
)

// BarTag holds the data encoded into each bar tag's QR code.
type BarTag struct {
	BarID       string   `json:"bar"`
	Diameter    string   `json:"diameter"`
	StockLength float64  `json:"stock_m"`
	Pieces      []string `json:"pieces"`          // Piece lengths in metres, cut order
	Marks       []string `json:"marks,omitempty"` // Bar marks of the pieces, "-" for surplus
	Offcut      float64  `json:"offcut_m"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectBarTags returns one tag per purchased bar in plan order.
func CollectBarTags(plan model.CuttingPlan) []BarTag {
	var tags []BarTag
	for _, b := range plan.Bars() {
		tag := BarTag{
			BarID:       b.ID,
			Diameter:    string(b.Diameter),
			StockLength: b.StockLength.Meters(),
			Offcut:      b.Offcut.Meters(),
		}
		hasMarks := false
		for _, p := range b.Pieces {
			tag.Pieces = append(tag.Pieces, formatMeters(p.Length))
			mark := "-"
			if !p.Surplus && p.Label != "" {
				mark = p.Label
				hasMarks = true
			}
			tag.Marks = append(tag.Marks, mark)
		}
		if !hasMarks {
			tag.Marks = nil
		}
		tags = append(tags, tag)
	}
	return tags
}

// ExportLabels generates a PDF of QR-coded bar tags, one per purchased bar.
// Each tag shows the bar ID, stock length and cut sequence, and the QR code
// encodes the tag as JSON. Tags are laid out on a standard label sheet
// format (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path string, plan model.CuttingPlan) error {
	tags := CollectBarTags(plan)
	if len(tags) == 0 {
		return fmt.Errorf("no bars to generate tags for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, tag := range tags {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderTag(pdf, x, y, tag); err != nil {
			return fmt.Errorf("failed to render tag for %q: %w", tag.BarID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderTag draws a single bar tag at the given position.
func renderTag(pdf *fpdf.Fpdf, x, y float64, tag BarTag) error {
	// Light border as a cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(tag)
	if err != nil {
		return fmt.Errorf("failed to marshal tag: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "qr_" + tag.BarID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, tag.BarID, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%s  %gm stock", tag.Diameter, tag.StockLength), "", 1, "L", false, 0, "")

	// Cut sequence, truncated to the text column
	pdf.SetFont("Helvetica", "", 6)
	cuts := truncate(pdf, "Cut: "+joinComma(tag.Pieces), textW)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, cuts, "", 1, "L", false, 0, "")

	if len(tag.Marks) > 0 {
		pdf.SetTextColor(100, 100, 100)
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.CellFormat(textW, 3, truncate(pdf, "Marks: "+joinComma(tag.Marks), textW), "", 1, "L", false, 0, "")
	}

	if tag.Offcut > 0 {
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.SetXY(textX, y+labelPadding+16)
		pdf.CellFormat(textW, 3, fmt.Sprintf("Offcut %gm", tag.Offcut), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

func truncate(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}
