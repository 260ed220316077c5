package export

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/piwi3910/RebarCut/internal/model"
)

// ExportChart saves a stacked bar chart of purchased length per diameter,
// split into cut pieces, kerf and offcut, in metres. The image format follows
// the file extension (.png, .svg or .pdf); anything else gets ".png" appended.
func ExportChart(path string, plan model.CuttingPlan) error {
	if len(plan.Diameters) == 0 {
		return fmt.Errorf("no bars to chart")
	}

	var used, kerf, offcut plotter.Values
	names := make([]string, 0, len(plan.Diameters))
	for _, d := range plan.Diameters {
		var u, k, o model.MM
		for _, b := range d.Bars {
			u += b.UsedLength()
			k += b.KerfLoss
			o += b.Offcut
		}
		used = append(used, u.Meters())
		kerf = append(kerf, k.Meters())
		offcut = append(offcut, o.Meters())
		names = append(names, string(d.Diameter))
	}

	p := plot.New()
	p.Title.Text = "Purchased Length by Diameter"
	p.Y.Label.Text = "Length (m)"

	width := vg.Points(20)
	usedBars, err := plotter.NewBarChart(used, width)
	if err != nil {
		return err
	}
	usedBars.Color = color.RGBA{R: 76, G: 175, B: 80, A: 255}

	kerfBars, err := plotter.NewBarChart(kerf, width)
	if err != nil {
		return err
	}
	kerfBars.Color = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	kerfBars.StackOn(usedBars)

	offcutBars, err := plotter.NewBarChart(offcut, width)
	if err != nil {
		return err
	}
	offcutBars.Color = color.RGBA{R: 244, G: 67, B: 54, A: 255}
	offcutBars.StackOn(kerfBars)

	p.Add(usedBars, kerfBars, offcutBars)
	p.Legend.Add("Pieces", usedBars)
	p.Legend.Add("Kerf", kerfBars)
	p.Legend.Add("Offcut", offcutBars)
	p.Legend.Top = true
	p.NominalX(names...)

	w := 8 * vg.Inch
	h := 6 * vg.Inch
	switch filepath.Ext(path) {
	case ".png", ".svg", ".pdf":
		return p.Save(w, h, path)
	default:
		return p.Save(w, h, path+".png")
	}
}
