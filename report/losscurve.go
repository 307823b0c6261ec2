// Package report renders training diagnostics.
package report

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/aquamodel/watertable/pkg/errors"
)

// LossCurve renders the per-iteration training loss to a PNG file.
func LossCurve(losses []float64, path string) error {
	if len(losses) == 0 {
		return errors.NewValueError("report.LossCurve", "no loss history to plot")
	}

	p := plot.New()
	p.Title.Text = "Training loss"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "multiclass log loss"

	points := make(plotter.XYs, len(losses))
	for i, loss := range losses {
		points[i].X = float64(i)
		points[i].Y = loss
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return errors.Wrap(err, "report.LossCurve: build line")
	}
	p.Add(line)
	p.Add(plotter.NewGrid())

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "report.LossCurve: save %s", path)
	}
	return nil
}
