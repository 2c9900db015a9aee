// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package chart renders the analysis figures as PNG files. Each figure is
// drawn on its own canvas and flushed to disk before the function returns,
// so a failed stage never leaves a half-written artifact open.
package chart

import (
	"image/color"
	"math"
	"os"
	"strconv"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/gorse-io/eda/analysis"
)

// DPI is the resolution of every figure.
const DPI = 150

// ActivityBins is the number of bins of the user activity histogram.
const ActivityBins = 30

// BehaviorBins is the number of bins of the per-user mean and std histograms.
const BehaviorBins = 20

var (
	skyBlue = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	coral   = color.RGBA{R: 255, G: 127, B: 80, A: 255}
	green   = color.RGBA{R: 46, G: 139, B: 87, A: 255}
	orange  = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	purple  = color.RGBA{R: 128, G: 0, B: 128, A: 255}
)

// savePNG tiles plots on a canvas of the given size and writes the canvas
// to a PNG file. The file is closed before returning.
func savePNG(plots [][]*plot.Plot, width, height vg.Length, path string) error {
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(DPI))
	canvas := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: len(plots[0]),
		PadX: vg.Millimeter * 5,
		PadY: vg.Millimeter * 5,
	}
	canvases := plot.Align(plots, tiles, canvas)
	for i := range plots {
		for j := range plots[i] {
			if plots[i][j] != nil {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}
	return writePNG(img, path)
}

func writePNG(img *vgimg.Canvas, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err = png.WriteTo(file); err != nil {
		_ = file.Close()
		return errors.Trace(err)
	}
	return errors.Trace(file.Close())
}

// Distributions renders the rating value bar chart and the user activity
// histogram side by side. The activity count axis is logarithmic since the
// distribution is heavy-tailed.
func Distributions(histogram []analysis.RatingCount, activity []float64, path string) error {
	if len(histogram) == 0 || len(activity) == 0 {
		return errors.NotValidf("empty rating table")
	}
	// rating distribution
	left := plot.New()
	left.Title.Text = "Rating Distribution"
	left.X.Label.Text = "Rating"
	left.Y.Label.Text = "Count"
	counts := lo.Map(histogram, func(c analysis.RatingCount, _ int) float64 { return float64(c.Count) })
	bars, err := plotter.NewBarChart(plotter.Values(counts), vg.Points(20))
	if err != nil {
		return errors.Trace(err)
	}
	bars.Color = skyBlue
	bars.LineStyle.Width = 0
	left.Add(bars)
	left.NominalX(lo.Map(histogram, func(c analysis.RatingCount, _ int) string {
		return strconv.FormatFloat(c.Rating, 'g', -1, 64)
	})...)

	// user activity distribution
	right := plot.New()
	right.Title.Text = "User Activity Distribution"
	right.X.Label.Text = "Number of Ratings per User"
	right.Y.Label.Text = "Number of Users"
	activityHist, err := plotter.NewHist(plotter.Values(activity), ActivityBins)
	if err != nil {
		return errors.Trace(err)
	}
	activityHist.FillColor = coral
	activityHist.LogY = true
	right.Add(activityHist)
	right.Y.Scale = plot.LogScale{}
	right.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	return savePNG([][]*plot.Plot{{left, right}}, 10*vg.Inch, 4*vg.Inch, path)
}

// Popularity renders the item popularity scatter: rating count on a
// logarithmic x axis, mean rating on the y axis, point color mapped to the
// rating count with a horizontal color bar below the plot.
func Popularity(items []analysis.Aggregate, path string) error {
	if len(items) == 0 {
		return errors.NotValidf("empty item aggregate")
	}
	points := make(plotter.XYs, len(items))
	for i, item := range items {
		points[i].X = float64(item.Count)
		points[i].Y = item.Mean
	}
	counts := lo.Map(items, func(a analysis.Aggregate, _ int) float64 { return float64(a.Count) })
	colors := moreland.ExtendedKindlmann()
	colors.SetMin(floats.Min(counts))
	if floats.Max(counts) > floats.Min(counts) {
		colors.SetMax(floats.Max(counts))
	} else {
		colors.SetMax(floats.Min(counts) + 1)
	}

	p := plot.New()
	p.Title.Text = "Movie Popularity vs Average Rating"
	p.X.Label.Text = "Number of Ratings (Popularity)"
	p.Y.Label.Text = "Average Rating"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return errors.Trace(err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c, err := colors.At(points[i].X)
		if err != nil {
			c = color.Black
		}
		return draw.GlyphStyle{Color: c, Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
	}
	p.Add(scatter)

	// color bar legend
	bar := plot.New()
	bar.X.Label.Text = "Number of Ratings"
	bar.HideY()
	bar.Add(&plotter.ColorBar{ColorMap: colors})

	const width, height, barHeight = 10 * vg.Inch, 6 * vg.Inch, 1 * vg.Inch
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(DPI))
	canvas := draw.New(img)
	p.Draw(draw.Crop(canvas, 0, 0, barHeight, 0))
	bar.Draw(draw.Crop(canvas, vg.Millimeter*20, -vg.Millimeter*20, 0, barHeight-height))
	return writePNG(img, path)
}

// UserBehavior renders three panels over the per-user aggregates: the mean
// rating histogram, the rating std histogram (users with a single rating
// carry no std and are excluded) and the activity vs mean rating scatter.
func UserBehavior(users []analysis.Aggregate, path string) error {
	if len(users) == 0 {
		return errors.NotValidf("empty user aggregate")
	}
	means := plot.New()
	means.Title.Text = "User Average Rating Distribution"
	means.X.Label.Text = "Average Rating Given by User"
	means.Y.Label.Text = "Number of Users"
	meanHist, err := plotter.NewHist(plotter.Values(
		lo.Map(users, func(a analysis.Aggregate, _ int) float64 { return a.Mean })), BehaviorBins)
	if err != nil {
		return errors.Trace(err)
	}
	meanHist.FillColor = green
	means.Add(meanHist)

	stds := plot.New()
	stds.Title.Text = "User Rating Variance"
	stds.X.Label.Text = "Std Dev of Ratings Given by User"
	stds.Y.Label.Text = "Number of Users"
	stdValues := lo.FilterMap(users, func(a analysis.Aggregate, _ int) (float64, bool) {
		return a.Std, !math.IsNaN(a.Std)
	})
	if len(stdValues) > 0 {
		stdHist, err := plotter.NewHist(plotter.Values(stdValues), BehaviorBins)
		if err != nil {
			return errors.Trace(err)
		}
		stdHist.FillColor = orange
		stds.Add(stdHist)
	}

	activity := plot.New()
	activity.Title.Text = "User Activity vs Rating Bias"
	activity.X.Label.Text = "Number of Ratings Given"
	activity.Y.Label.Text = "User Average Rating"
	activity.X.Scale = plot.LogScale{}
	activity.X.Tick.Marker = plot.LogTicks{Prec: -1}
	points := make(plotter.XYs, len(users))
	for i, user := range users {
		points[i].X = float64(user.Count)
		points[i].Y = user.Mean
	}
	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return errors.Trace(err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	activity.Add(scatter)

	return savePNG([][]*plot.Plot{{means, stds, activity}}, 12*vg.Inch, 4*vg.Inch, path)
}

// Genres renders the top genre bar chart with rotated x axis labels.
func Genres(genres []analysis.GenreCount, path string) error {
	p := plot.New()
	p.Title.Text = "Top 10 Movie Genres"
	p.X.Label.Text = "Genre"
	p.Y.Label.Text = "Number of Movies"
	counts := lo.Map(genres, func(c analysis.GenreCount, _ int) float64 { return float64(c.Count) })
	bars, err := plotter.NewBarChart(plotter.Values(counts), vg.Points(30))
	if err != nil {
		return errors.Trace(err)
	}
	bars.Color = purple
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(lo.Map(genres, func(c analysis.GenreCount, _ int) string { return c.Genre })...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	return savePNG([][]*plot.Plot{{p}}, 12*vg.Inch, 6*vg.Inch, path)
}
