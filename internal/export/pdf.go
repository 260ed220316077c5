package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/RebarCut/internal/model"
)

// partColor represents an RGB color for a cut piece.
type partColor struct {
	R, G, B int
}

// partColors assigns one color per distinct piece length on a page.
var partColors = []partColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0

	barHeight  = 9.0  // Height of one drawn bar
	barSpacing = 7.0  // Vertical gap between bars, holds the caption
	countWidth = 18.0 // Column left of the bars for the repeat count
)

// ExportPDF generates a cut sheet: one or more pages per diameter with every
// distinct pattern drawn to scale, followed by a purchase summary page.
func ExportPDF(path string, plan model.CuttingPlan, opts model.Options) error {
	if len(plan.Diameters) == 0 {
		return fmt.Errorf("no bars to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, d := range plan.Diameters {
		renderDiameterPages(pdf, d)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, plan, opts)

	return pdf.OutputFileAndClose(path)
}

// renderDiameterPages draws the patterns of one diameter, starting a new page
// whenever the drawing area is full.
func renderDiameterPages(pdf *fpdf.Fpdf, d model.DiameterPlan) {
	drawWidth := pageWidth - marginLeft - marginRight - countWidth
	var longest model.MM
	for _, u := range d.Patterns {
		if u.Pattern.StockLength > longest {
			longest = u.Pattern.StockLength
		}
	}
	if longest == 0 {
		return
	}
	scale := drawWidth / float64(longest)
	colors := colorIndex(d.Patterns)

	page := 0
	y := 0.0
	maxY := pageHeight - marginBottom - 10
	for _, u := range d.Patterns {
		if page == 0 || y+barHeight+barSpacing > maxY {
			page++
			pdf.AddPage()
			renderDiameterHeader(pdf, d, page)
			y = drawAreaTop
		}
		drawPattern(pdf, u, scale, colors, y)
		y += barHeight + barSpacing
	}

	drawLengthLegend(pdf, colors, y)
}

func renderDiameterHeader(pdf *fpdf.Fpdf, d model.DiameterPlan, page int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Diameter %s", d.Diameter)
	if page > 1 {
		title += fmt.Sprintf(" (continued, page %d)", page)
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Bars: %d | Cost: %s | LP bound: %s | Waste: %.1f%% | Surplus pieces: %d",
		d.BarsPurchased(), Money(d.TotalCost).StringFixed(2), Money(d.LowerBound).StringFixed(2),
		d.WastePercent(), d.SurplusPieces)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")
}

// drawPattern draws one pattern as a horizontal bar with its piece segments,
// kerf gaps and the hatched offcut at the right end.
func drawPattern(pdf *fpdf.Fpdf, u model.PatternUsage, scale float64, colors map[model.MM]int, y float64) {
	p := u.Pattern
	x0 := marginLeft + countWidth

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y+1.5)
	pdf.CellFormat(countWidth-2, 6, fmt.Sprintf("x%d", u.Count), "", 0, "R", false, 0, "")

	// Stock outline
	barW := float64(p.StockLength) * scale
	pdf.SetFillColor(190, 190, 190)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Rect(x0, y, barW, barHeight, "FD")

	kerf := 0.0
	if len(p.Pieces) > 1 {
		kerf = float64(p.KerfLoss) / float64(len(p.Pieces)-1)
	}
	x := x0
	for i, l := range p.Pieces {
		w := float64(l) * scale
		col := partColors[colors[l]%len(partColors)]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x, y, w, barHeight, "FD")

		label := formatMeters(l)
		pdf.SetFont("Helvetica", "", labelFontSize(w))
		if lw := pdf.GetStringWidth(label); lw < w-1 {
			pdf.SetXY(x+(w-lw)/2, y+barHeight/2-2)
			pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
		}

		x += w
		if i < len(p.Pieces)-1 {
			x += kerf * scale
		}
	}

	if p.Waste > 0 {
		drawHatchPattern(pdf, x, y, x0+barW-x, barHeight)
	}

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(x0, y+barHeight+0.5)
	caption := fmt.Sprintf("%sm %s  |  cuts: %s  |  offcut %sm",
		formatMeters(p.StockLength), p.StockID, joinComma(CutsPerBar(p)), formatMeters(p.Waste))
	pdf.CellFormat(barW, 4, caption, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// drawHatchPattern draws diagonal lines inside a rectangle to mark offcut.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	if w <= 0 {
		return
	}
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)

	spacing := 2.0
	maxDist := w + h

	for d := spacing; d < maxDist; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)

		pdf.Line(x1, y1, x2, y2)
	}
}

// colorIndex assigns a palette slot to each distinct piece length, longest
// first, so the same length keeps its color on every bar.
func colorIndex(usages []model.PatternUsage) map[model.MM]int {
	var lengths []model.MM
	seen := make(map[model.MM]bool)
	for _, u := range usages {
		for _, l := range u.Pattern.Pieces {
			if !seen[l] {
				seen[l] = true
				lengths = append(lengths, l)
			}
		}
	}
	sortDesc(lengths)
	idx := make(map[model.MM]int, len(lengths))
	for i, l := range lengths {
		idx[l] = i
	}
	return idx
}

func sortDesc(ls []model.MM) {
	sort.Slice(ls, func(i, j int) bool { return ls[i] > ls[j] })
}

// drawLengthLegend renders the color of each piece length below the bars.
func drawLengthLegend(pdf *fpdf.Fpdf, colors map[model.MM]int, startY float64) {
	if len(colors) == 0 || startY+5 > pageHeight-marginBottom {
		return
	}
	lengths := make([]model.MM, 0, len(colors))
	for l := range colors {
		lengths = append(lengths, l)
	}
	sortDesc(lengths)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Piece lengths:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight
	for _, l := range lengths {
		col := partColors[colors[l]%len(partColors)]
		label := formatMeters(l) + "m"
		labelW := pdf.GetStringWidth(label) + 6
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// renderSummaryPage draws the purchase list and overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, plan model.CuttingPlan, opts model.Options) {
	report := BuildReport(plan)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Rebar Purchase Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Bars Purchased", fmt.Sprintf("%d", report.Summary.Bars)},
		{"Total Cost", report.Summary.TotalCost},
		{"LP Lower Bound", report.Summary.LowerBound},
		{"Waste", fmt.Sprintf("%gm (%.1f%%)", report.Summary.Waste, report.Summary.WastePercent)},
		{"Surplus Pieces", fmt.Sprintf("%d", report.Summary.Surplus)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Purchase Qty by Length & Diameter", "", 0, "L", false, 0, "")
	y += 9

	headers := []string{"Diameter"}
	for _, l := range report.Lengths {
		headers = append(headers, fmt.Sprintf("%gm", l))
	}
	headers = append(headers, "Bars", "Cost")
	colW := math.Min(30, (pageWidth-marginLeft-marginRight)/float64(len(headers)))

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for _, h := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colW, 6, h, "1", 0, "C", true, 0, "")
		xPos += colW
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range report.Purchase {
		cells := []string{row.Diameter}
		for _, c := range row.Counts {
			if c == 0 {
				cells = append(cells, "")
			} else {
				cells = append(cells, fmt.Sprintf("%d", c))
			}
		}
		cells = append(cells, fmt.Sprintf("%d", row.Bars), row.Cost)

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for _, cell := range cells {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colW, 6, cell, "1", 0, "C", true, 0, "")
			xPos += colW
		}
		y += 6
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Kerf Width", fmt.Sprintf("%.1f mm", opts.KerfWidth)},
		{"Waste Threshold", fmt.Sprintf("%.1f%%", opts.WasteThreshold*100)},
		{"Custom Stock", fmt.Sprintf("%t", opts.AllowCustomStock)},
		{"Strategy", string(opts.Strategy)},
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by RebarCut - Rebar Cutting Optimizer", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// labelFontSize returns a font size that fits a segment of the given width.
func labelFontSize(w float64) float64 {
	switch {
	case w > 40:
		return 8
	case w > 20:
		return 7
	default:
		return 6
	}
}
