package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"
	"github.com/rangescope/rangescope/pkg/sample"
	"github.com/rangescope/rangescope/pkg/tracker"
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Lines for distances and speeds
	distanceLine *canvas.Line
	speedLine    *canvas.Line

	// Halt markers (vertical lines)
	haltLines []*canvas.Line

	// Weight labels over halts
	weightLabels []*canvas.Text

	// Current weight label
	weightLabel *canvas.Text

	// Grid lines
	gridLines []*canvas.Line
	gridTexts []*canvas.Text

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	// Background fills entire widget
	r.grid.Resize(size)

	// Check if size changed
	if r.lastSize.Width != size.Width || r.lastSize.Height != size.Height {
		r.lastSize = size
		// Size changed, trigger widget refresh to redraw with new dimensions
		// Use BaseWidget.Refresh() to properly trigger Fyne's refresh cycle
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	samples := r.scope.displaySamples
	speeds := r.scope.displaySpeeds
	halts := r.scope.halts
	weight := r.scope.weight
	yMin := r.scope.yMin
	yMax := r.scope.yMax
	xMin := r.scope.xMin
	xMax := r.scope.xMax
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	// Clear old objects (but keep grid)
	r.objects = []fyne.CanvasObject{r.grid}
	r.gridLines = r.gridLines[:0]
	r.gridTexts = r.gridTexts[:0]
	r.haltLines = r.haltLines[:0]
	r.weightLabels = r.weightLabels[:0]
	r.weightLabel = nil

	// Calculate margins
	marginLeft := float32(60.0)
	marginRight := float32(20.0)
	marginTop := float32(20.0)
	marginBottom := float32(40.0)

	plotWidth := size.Width - marginLeft - marginRight
	plotHeight := size.Height - marginTop - marginBottom
	plotX := marginLeft
	plotY := marginTop

	// Draw grid
	r.drawGrid(plotX, plotY, plotWidth, plotHeight, yMin, yMax, xMin, xMax)

	// Draw distance curve (orange line)
	if len(samples) > 1 {
		r.drawDistanceLine(plotX, plotY, plotWidth, plotHeight, samples, yMin, yMax, xMin, xMax)
	}

	// Draw speed curve (light blue, thicker line)
	if len(speeds) > 0 && len(samples) > 1 {
		r.drawSpeedLine(plotX, plotY, plotWidth, plotHeight, speeds, samples, yMin, yMax, xMin, xMax)
	}

	// Draw halts (dark blue vertical lines)
	r.drawHalts(plotX, plotY, plotWidth, plotHeight, halts, samples, xMin, xMax)

	// Draw weight labels over each halt span
	r.drawWeightLabels(plotX, plotY, plotWidth, plotHeight, halts, samples, yMin, yMax, xMin, xMax)

	// Draw current weight indicator
	if weight > 0 {
		r.drawWeight(plotX, plotY, weight)
	}
}

// drawGrid draws the oscilloscope-style grid.
func (r *scopeRenderer) drawGrid(plotX, plotY, plotWidth, plotHeight float32, yMin, yMax float64, xMin, xMax time.Time) {
	// Horizontal grid lines (distance / speed)
	numHLines := 8
	for i := 0; i <= numHLines; i++ {
		y := plotY + float32(i)*plotHeight/float32(numHLines)
		line := canvas.NewLine(color.RGBA{R: 40, G: 40, B: 40, A: 255})
		line.Position1 = fyne.NewPos(plotX, y)
		line.Position2 = fyne.NewPos(plotX+plotWidth, y)
		line.StrokeWidth = 1
		r.gridLines = append(r.gridLines, line)
		r.objects = append(r.objects, line)

		// Y-axis label
		value := yMax - float64(i)*(yMax-yMin)/float64(numHLines)
		text := canvas.NewText(formatDistance(value), color.RGBA{R: 150, G: 150, B: 150, A: 255})
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(plotX-5, y-6))
		r.gridTexts = append(r.gridTexts, text)
		r.objects = append(r.objects, text)
	}

	// Vertical grid lines (time)
	numVLines := 10
	for i := 0; i <= numVLines; i++ {
		x := plotX + float32(i)*plotWidth/float32(numVLines)
		line := canvas.NewLine(color.RGBA{R: 40, G: 40, B: 40, A: 255})
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotHeight)
		line.StrokeWidth = 1
		r.gridLines = append(r.gridLines, line)
		r.objects = append(r.objects, line)

		// X-axis label
		timeOffset := float64(i) * xMax.Sub(xMin).Seconds() / float64(numVLines)
		timeVal := xMin.Add(time.Duration(timeOffset * float64(time.Second)))
		text := canvas.NewText(formatTime(timeVal.Sub(xMin)), color.RGBA{R: 150, G: 150, B: 150, A: 255})
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, plotY+plotHeight+5))
		r.gridTexts = append(r.gridTexts, text)
		r.objects = append(r.objects, text)
	}
}

// plotPoint maps a (time, value) pair onto plot coordinates, clamped to the
// plot area so spikes never draw outside the grid.
func plotPoint(plotX, plotY, plotWidth, plotHeight float32, t time.Time, v float64, yMin, yMax float64, xMin, xMax time.Time) fyne.Position {
	x := plotX + float32(t.Sub(xMin).Seconds()/xMax.Sub(xMin).Seconds())*plotWidth
	y := plotY + plotHeight - float32((v-yMin)/(yMax-yMin))*plotHeight
	x = math32.Max(plotX, math32.Min(x, plotX+plotWidth))
	y = math32.Max(plotY, math32.Min(y, plotY+plotHeight))
	return fyne.NewPos(x, y)
}

// drawDistanceLine draws the distance curve (orange).
func (r *scopeRenderer) drawDistanceLine(plotX, plotY, plotWidth, plotHeight float32, samples []sample.Sample, yMin, yMax float64, xMin, xMax time.Time) {
	if len(samples) < 2 {
		return
	}

	points := make([]fyne.Position, 0, len(samples))
	for _, s := range samples {
		points = append(points, plotPoint(plotX, plotY, plotWidth, plotHeight, s.Timestamp, s.Distance, yMin, yMax, xMin, xMax))
	}

	// Draw connected line segments
	for i := 0; i < len(points)-1; i++ {
		line := canvas.NewLine(color.RGBA{R: 255, G: 165, B: 0, A: 255}) // Orange
		line.Position1 = points[i]
		line.Position2 = points[i+1]
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)
	}
}

// drawSpeedLine draws the speed curve (light blue, thicker).
func (r *scopeRenderer) drawSpeedLine(plotX, plotY, plotWidth, plotHeight float32, speeds []float64, samples []sample.Sample, yMin, yMax float64, xMin, xMax time.Time) {
	if len(speeds) == 0 || len(samples) < 2 {
		return
	}

	// Speeds correspond to sample pairs, so we use sample timestamps
	points := make([]fyne.Position, 0, len(speeds))
	for i, speed := range speeds {
		if i+1 >= len(samples) {
			break
		}
		// Use midpoint between samples for speed position
		midTime := samples[i].Timestamp.Add(samples[i+1].Timestamp.Sub(samples[i].Timestamp) / 2)
		points = append(points, plotPoint(plotX, plotY, plotWidth, plotHeight, midTime, speed, yMin, yMax, xMin, xMax))
	}

	// Draw connected line segments
	for i := 0; i < len(points)-1; i++ {
		line := canvas.NewLine(color.RGBA{R: 100, G: 200, B: 255, A: 255}) // Light blue
		line.Position1 = points[i]
		line.Position2 = points[i+1]
		line.StrokeWidth = 2.5
		r.objects = append(r.objects, line)
	}
}

// drawHalts draws vertical lines for detected halt spans (dark blue).
func (r *scopeRenderer) drawHalts(plotX, plotY, plotWidth, plotHeight float32, halts []tracker.Halt, samples []sample.Sample, xMin, xMax time.Time) {
	if len(samples) == 0 {
		return
	}

	for _, halt := range halts {
		// Get halt start and end positions from indices
		if halt.StartIndex < 0 || halt.StartIndex >= len(samples) {
			continue
		}
		if halt.EndIndex < 0 || halt.EndIndex >= len(samples) {
			continue
		}

		startTime := samples[halt.StartIndex].Timestamp
		endTime := samples[halt.EndIndex].Timestamp

		// Draw start line
		xStart := plotX + float32(startTime.Sub(xMin).Seconds()/xMax.Sub(xMin).Seconds())*plotWidth
		lineStart := canvas.NewLine(color.RGBA{R: 0, G: 100, B: 200, A: 255}) // Dark blue
		lineStart.Position1 = fyne.NewPos(xStart, plotY)
		lineStart.Position2 = fyne.NewPos(xStart, plotY+plotHeight)
		lineStart.StrokeWidth = 1
		r.haltLines = append(r.haltLines, lineStart)
		r.objects = append(r.objects, lineStart)

		// Draw end line
		xEnd := plotX + float32(endTime.Sub(xMin).Seconds()/xMax.Sub(xMin).Seconds())*plotWidth
		lineEnd := canvas.NewLine(color.RGBA{R: 0, G: 100, B: 200, A: 255}) // Dark blue
		lineEnd.Position1 = fyne.NewPos(xEnd, plotY)
		lineEnd.Position2 = fyne.NewPos(xEnd, plotY+plotHeight)
		lineEnd.StrokeWidth = 1
		r.haltLines = append(r.haltLines, lineEnd)
		r.objects = append(r.objects, lineEnd)
	}
}

// drawWeightLabels draws a weight label over each detected halt.
func (r *scopeRenderer) drawWeightLabels(plotX, plotY, plotWidth, plotHeight float32, halts []tracker.Halt, samples []sample.Sample, yMin, yMax float64, xMin, xMax time.Time) {
	if len(samples) == 0 {
		return
	}

	for _, halt := range halts {
		if halt.StartIndex < 0 || halt.StartIndex >= len(samples) {
			continue
		}
		if halt.EndIndex < 0 || halt.EndIndex >= len(samples) {
			continue
		}

		// Calculate center of halt span
		startTime := samples[halt.StartIndex].Timestamp
		endTime := samples[halt.EndIndex].Timestamp
		centerTime := startTime.Add(endTime.Sub(startTime) / 2)

		x := plotX + float32(centerTime.Sub(xMin).Seconds()/xMax.Sub(xMin).Seconds())*plotWidth

		// Find max distance in halt range for Y position
		maxDistance := yMin
		for i := halt.StartIndex; i <= halt.EndIndex && i < len(samples); i++ {
			if samples[i].Distance > maxDistance {
				maxDistance = samples[i].Distance
			}
		}
		y := plotY + plotHeight - float32((maxDistance-yMin)/(yMax-yMin))*plotHeight - 15

		// Weighing is only meaningful when something sits on the scale
		var label string
		if halt.Weight > 0 {
			label = formatWeight(halt.Weight)
		} else {
			label = formatSpeed(halt.Speed)
		}
		text := canvas.NewText(label, color.RGBA{R: 255, G: 165, B: 0, A: 255}) // Orange
		text.TextSize = 12
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-30, y))
		r.weightLabels = append(r.weightLabels, text)
		r.objects = append(r.objects, text)
	}
}

// drawWeight draws the current weight indicator.
func (r *scopeRenderer) drawWeight(plotX, plotY float32, weight float64) {
	text := canvas.NewText(formatWeight(weight), color.RGBA{R: 200, G: 200, B: 200, A: 255}) // Light gray
	text.TextSize = 11
	text.Alignment = fyne.TextAlignLeading
	text.Move(fyne.NewPos(plotX+10, plotY+10))
	r.weightLabel = text
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}

// Helper functions for formatting

func formatDistance(cm float64) string {
	if math32.Abs(float32(cm)) >= 100 {
		return fmt.Sprintf("%.2f m", cm/100)
	}
	return fmt.Sprintf("%.1f cm", cm)
}

func formatSpeed(cmPerS float64) string {
	return fmt.Sprintf("%.1f cm/s", cmPerS)
}

func formatWeight(kg float64) string {
	if kg >= 1000 {
		return fmt.Sprintf("%.2f t", kg/1000)
	}
	return fmt.Sprintf("%.1f kg", kg)
}

func formatTime(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
