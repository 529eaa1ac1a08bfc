package cli

import (
	"image/color"

	"github.com/golang/geo/r2"
	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/localplanner/navigation"
	"go.viam.com/localplanner/spatialmath"
)

const plotSize = 6 * vg.Inch

func posesToXYs(poses []spatialmath.Pose) plotter.XYs {
	return lo.Map(poses, func(p spatialmath.Pose, _ int) plotter.XY { return plotter.XY{X: p.X, Y: p.Y} })
}

// savePlot draws the plan, the driven path, the winning trajectory of every cycle and the
// obstacles of a run.
func savePlot(res *runResult, path string) error {
	p := plot.New()
	p.Title.Text = res.name
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	planLine, err := plotter.NewLine(posesToXYs(res.plan))
	if err != nil {
		return err
	}
	planLine.LineStyle.Color = color.RGBA{B: 255, A: 255}
	planLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(planLine)
	p.Legend.Add("plan", planLine)

	for _, r := range res.cycles {
		if len(r.Trajectory.Poses) < 2 {
			continue
		}
		trajLine, err := plotter.NewLine(posesToXYs(r.Trajectory.Poses))
		if err != nil {
			return err
		}
		trajLine.LineStyle.Color = color.RGBA{R: 200, G: 200, B: 200, A: 255}
		p.Add(trajLine)
	}

	driven := append(lo.Map(res.cycles, func(r navigation.CycleResult, _ int) spatialmath.Pose { return r.Pose }), res.final)
	drivenLine, err := plotter.NewLine(posesToXYs(driven))
	if err != nil {
		return err
	}
	drivenLine.LineStyle.Color = color.RGBA{G: 160, A: 255}
	drivenLine.LineStyle.Width = vg.Points(2)
	p.Add(drivenLine)
	p.Legend.Add("driven", drivenLine)

	if obstacles := res.scenario.Obstacles(); len(obstacles) > 0 {
		scatter, err := plotter.NewScatter(plotter.XYs(lo.Map(obstacles, func(o r2.Point, _ int) plotter.XY {
			return plotter.XY{X: o.X, Y: o.Y}
		})))
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
		p.Add(scatter)
		p.Legend.Add("obstacles", scatter)
	}

	return p.Save(plotSize, plotSize, path)
}
