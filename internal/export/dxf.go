package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/RebarCut/internal/model"
)

// DXF layer names other than the per-diameter piece layers.
const (
	LayerOffcut = "OFFCUT"
	LayerText   = "TEXT"
)

const (
	dxfRowSpacing = 400.0 // mm between drawn bars
	dxfTextHeight = 100.0
)

// ExportDXF draws every purchased bar at full scale in millimetres. Each cut
// piece is one LINE on the layer named after its diameter, offcuts go on the
// OFFCUT layer and the bar IDs on the TEXT layer, so reading the file back
// with the DXF importer yields the produced pieces.
func ExportDXF(path string, plan model.CuttingPlan) error {
	bars := plan.Bars()
	if len(bars) == 0 {
		return fmt.Errorf("no bars to export")
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(LayerText, dxf.DefaultColor, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerText, err)
	}
	if _, err := d.AddLayer(LayerOffcut, dxf.DefaultColor, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerOffcut, err)
	}
	for _, dp := range plan.Diameters {
		if _, err := d.AddLayer(string(dp.Diameter), dxf.DefaultColor, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", dp.Diameter, err)
		}
	}

	for row, b := range bars {
		y := -float64(row) * dxfRowSpacing
		if err := drawBar(d, b, y); err != nil {
			return fmt.Errorf("bar %s: %w", b.ID, err)
		}
	}

	return d.SaveAs(path)
}

func drawBar(d *drawing.Drawing, b model.Bar, y float64) error {
	if err := d.ChangeLayer(LayerText); err != nil {
		return err
	}
	label := fmt.Sprintf("%s %s %sm", b.ID, b.Diameter, formatMeters(b.StockLength))
	if _, err := d.Text(label, 0, y+dxfTextHeight/2, 0, dxfTextHeight); err != nil {
		return err
	}

	if err := d.ChangeLayer(string(b.Diameter)); err != nil {
		return err
	}
	kerf := 0.0
	if len(b.Pieces) > 1 {
		kerf = float64(b.KerfLoss) / float64(len(b.Pieces)-1)
	}
	x := 0.0
	for i, p := range b.Pieces {
		end := x + float64(p.Length)
		if _, err := d.Line(x, y, 0, end, y, 0); err != nil {
			return err
		}
		x = end
		if i < len(b.Pieces)-1 {
			x += kerf
		}
	}

	if b.Offcut > 0 {
		if err := d.ChangeLayer(LayerOffcut); err != nil {
			return err
		}
		if _, err := d.Line(float64(b.StockLength-b.Offcut), y, 0, float64(b.StockLength), y, 0); err != nil {
			return err
		}
	}
	return nil
}
