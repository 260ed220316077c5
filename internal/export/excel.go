package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/RebarCut/internal/model"
)

// Sheet names of the Excel report.
const (
	SheetSummary  = "Summary"
	SheetPurchase = "Purchase List"
	SheetCutting  = "Cutting Plan"
	SheetBars     = "Bars"
	SheetOffcuts  = "Offcuts"
)

// ExportExcel writes the plan as a workbook with a summary, the purchase
// matrix (diameter x market length), the cutting plan with shop
// instructions, the per-bar cut list and, when present, the reusable offcuts.
func ExportExcel(path string, plan model.CuttingPlan) error {
	if len(plan.Diameters) == 0 {
		return fmt.Errorf("no bars to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	report := BuildReport(plan)
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	steps := []struct {
		name  string
		write func() error
	}{
		{SheetSummary, func() error { return writeSummary(f, styles, report) }},
		{SheetPurchase, func() error { return writePurchase(f, styles, report) }},
		{SheetCutting, func() error { return writeCutting(f, styles, report) }},
		{SheetBars, func() error { return writeBars(f, styles, plan) }},
	}
	if len(report.Offcuts) > 0 {
		steps = append(steps, struct {
			name  string
			write func() error
		}{SheetOffcuts, func() error { return writeOffcuts(f, styles, report) }})
	}

	for _, s := range steps {
		if s.name != SheetSummary {
			if _, err := f.NewSheet(s.name); err != nil {
				return fmt.Errorf("failed to add sheet %q: %w", s.name, err)
			}
		}
		if err := s.write(); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", s.name, err)
		}
	}

	return f.SaveAs(path)
}

type workbookStyles struct {
	title  int
	header int
	cell   int
	left   int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "404040", Style: 1},
		{Type: "right", Color: "404040", Style: 1},
		{Type: "top", Color: "404040", Style: 1},
		{Type: "bottom", Color: "404040", Style: 1},
	}
	var s workbookStyles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Family: "Calibri"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"404040"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    border,
	}); err != nil {
		return s, err
	}
	if s.cell, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    border,
	}); err != nil {
		return s, err
	}
	s.left, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
		Border:    border,
	})
	return s, err
}

// writeTable writes a title in row 1, headers in row 2 and the rows below.
func writeTable(f *excelize.File, st workbookStyles, sheet, title string, headers []string, rows [][]interface{}) error {
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}
	if len(headers) > 1 {
		if err := f.MergeCell(sheet, "A1", last); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", last, st.title); err != nil {
		return err
	}
	if err := f.SetRowHeight(sheet, 1, 30); err != nil {
		return err
	}

	for j, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(j+1, 2)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, 2)
	end, _ := excelize.CoordinatesToCellName(len(headers), 2)
	if err := f.SetCellStyle(sheet, first, end, st.header); err != nil {
		return err
	}

	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+3)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if len(rows) > 0 {
		first, _ = excelize.CoordinatesToCellName(1, 3)
		end, _ = excelize.CoordinatesToCellName(len(headers), len(rows)+2)
		if err := f.SetCellStyle(sheet, first, end, st.cell); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, st workbookStyles, r Report) error {
	rows := [][]interface{}{
		{"Bars purchased", r.Summary.Bars},
		{"Total cost", r.Summary.TotalCost},
		{"LP lower bound", r.Summary.LowerBound},
		{"Stock length (m)", r.Summary.StockLength},
		{"Waste (m)", r.Summary.Waste},
		{"Waste (%)", fmt.Sprintf("%.1f", r.Summary.WastePercent)},
		{"Surplus pieces", r.Summary.Surplus},
	}
	if err := writeTable(f, st, SheetSummary, "Rebar Cutting Summary", []string{"Item", "Value"}, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "B", 22)
}

func writePurchase(f *excelize.File, st workbookStyles, r Report) error {
	headers := []string{"Diameter"}
	for _, l := range r.Lengths {
		headers = append(headers, fmt.Sprintf("%gm", l))
	}
	headers = append(headers, "Total Bars", "Cost")

	rows := make([][]interface{}, 0, len(r.Purchase))
	for _, p := range r.Purchase {
		row := []interface{}{p.Diameter}
		for _, c := range p.Counts {
			if c == 0 {
				row = append(row, "")
			} else {
				row = append(row, c)
			}
		}
		row = append(row, p.Bars, p.Cost)
		rows = append(rows, row)
	}
	if err := writeTable(f, st, SheetPurchase, "Purchase Qty by Length & Diameter", headers, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetPurchase, "A", "A", 20)
}

func writeCutting(f *excelize.File, st workbookStyles, r Report) error {
	headers := []string{"Diameter", "Quantity", "Length", "Cuts", "Offcut", "Detailed Instructions"}
	rows := make([][]interface{}, 0, len(r.Cutting))
	for _, c := range r.Cutting {
		rows = append(rows, []interface{}{
			c.Diameter,
			c.Quantity,
			fmt.Sprintf("%gm", c.Length),
			joinLines(c.Cuts),
			fmt.Sprintf("%gm", c.Offcut),
			c.Instruction,
		})
	}
	if err := writeTable(f, st, SheetCutting, "Cutting Plan", headers, rows); err != nil {
		return err
	}
	if len(rows) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(headers), len(rows)+2)
		if err := f.SetCellStyle(SheetCutting, "F3", end, st.left); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetCutting, "D", "D", 15); err != nil {
		return err
	}
	return f.SetColWidth(SheetCutting, "F", "F", 70)
}

func writeBars(f *excelize.File, st workbookStyles, plan model.CuttingPlan) error {
	headers := []string{"Bar", "Diameter", "Stock", "Pieces", "Marks", "Kerf (mm)", "Offcut (m)"}
	var rows [][]interface{}
	for _, b := range plan.Bars() {
		var pieces, marks []string
		for _, p := range b.Pieces {
			pieces = append(pieces, formatMeters(p.Length)+"m")
			switch {
			case p.Surplus:
				marks = append(marks, "(surplus)")
			case p.Label != "":
				marks = append(marks, p.Label)
			default:
				marks = append(marks, "-")
			}
		}
		rows = append(rows, []interface{}{
			b.ID,
			string(b.Diameter),
			formatMeters(b.StockLength) + "m",
			joinComma(pieces),
			joinComma(marks),
			int64(b.KerfLoss),
			b.Offcut.Meters(),
		})
	}
	if err := writeTable(f, st, SheetBars, "Cut List by Bar", headers, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetBars, "D", "E", 40)
}

func writeOffcuts(f *excelize.File, st workbookStyles, r Report) error {
	headers := []string{"ID", "Diameter", "Length (m)", "From Bar"}
	rows := make([][]interface{}, 0, len(r.Offcuts))
	for _, o := range r.Offcuts {
		rows = append(rows, []interface{}{o.ID, o.Diameter, o.Length, o.SourceBar})
	}
	return writeTable(f, st, SheetOffcuts, "Reusable Offcuts", headers, rows)
}

func joinLines(s []string) string {
	out := ""
	for i, v := range s {
		if i > 0 {
			out += "\n"
		}
		out += v
	}
	return out
}

func joinComma(s []string) string {
	out := ""
	for i, v := range s {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}
