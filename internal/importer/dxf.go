package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/RebarCut/internal/model"
)

// ImportDXF reads a bar takeoff drawing. Every LINE and LWPOLYLINE is one bar,
// its developed length in drawing units (millimetres) is the cut length, and
// the layer name gives the diameter ("#16", "16", "DB16"...). Bars with the
// same diameter and length are merged into one requirement labelled after the
// layer.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	type key struct {
		dia    model.Diameter
		length model.MM
	}
	counts := make(map[key]int)
	var order []key
	skippedLayers := make(map[string]bool)

	for _, ent := range entities {
		var length float64
		switch e := ent.(type) {
		case *entity.Line:
			length = segmentLength(e.Start[0], e.Start[1], e.End[0], e.End[1])
		case *entity.LwPolyline:
			length = polylineLength(e)
		default:
			continue
		}

		layer := ""
		if l := ent.Layer(); l != nil {
			layer = l.Name()
		}
		dia, err := model.ParseDiameter(layer)
		if err != nil {
			if !skippedLayers[layer] {
				skippedLayers[layer] = true
				result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped entities on layer '%s': not a bar diameter", layer))
			}
			continue
		}
		if length <= 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped zero-length bar on layer '%s'", layer))
			continue
		}

		k := key{dia, model.MM(math.Round(length))}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].dia != order[j].dia {
			a, _ := order[i].dia.Millimeters()
			b, _ := order[j].dia.Millimeters()
			return a < b
		}
		return order[i].length > order[j].length
	})

	perDia := make(map[model.Diameter]int)
	for _, k := range order {
		perDia[k.dia]++
		label := fmt.Sprintf("%s-%d", k.dia, perDia[k.dia])
		result.Requirements = append(result.Requirements,
			model.NewCutRequirement(label, k.dia, k.length.Meters(), counts[k]))
	}

	if len(result.Requirements) == 0 {
		result.Errors = append(result.Errors, "No bars found on diameter layers")
	}
	return result
}

func segmentLength(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// polylineLength returns the developed length of a polyline. A vertex bulge
// is the tangent of a quarter of the arc's included angle, so the arc to the
// next vertex is chord * theta / (2 sin(theta/2)).
func polylineLength(lw *entity.LwPolyline) float64 {
	n := len(lw.Vertices)
	if n < 2 {
		return 0
	}
	segments := n - 1
	if lw.Closed {
		segments = n
	}

	total := 0.0
	for i := 0; i < segments; i++ {
		a, b := lw.Vertices[i], lw.Vertices[(i+1)%n]
		chord := segmentLength(a[0], a[1], b[0], b[1])
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) < 1e-9 {
			total += chord
			continue
		}
		theta := 4 * math.Atan(math.Abs(bulge))
		total += chord * theta / (2 * math.Sin(theta/2))
	}
	return total
}
