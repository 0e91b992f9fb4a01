// Sidebar with adjustments, face detection and drawing toggle
package gui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"image-editor/internal/config"
)

type Sidebar struct {
	container *container.Scroll

	brightnessSlider *widget.Slider
	brightnessLabel  *widget.Label
	detectBtn        *widget.Button
	facesLabel       *widget.Label
	drawingCheck     *widget.Check
	drawingInfo      *widget.Label
	metricsLabel     *widget.Label

	onBrightnessChanged func()
	onDetectFaces       func()
	onDrawingToggled    func()
}

func NewSidebar(controls config.ControlsConfig) *Sidebar {
	sb := &Sidebar{}
	sb.initializeUI(controls)
	return sb
}

func (sb *Sidebar) initializeUI(controls config.ControlsConfig) {
	sb.brightnessLabel = widget.NewLabel("")
	sb.brightnessSlider = widget.NewSlider(config.MinBrightness, config.MaxBrightness)
	sb.brightnessSlider.Step = 0.01
	sb.brightnessSlider.SetValue(controls.Brightness)
	sb.brightnessSlider.OnChanged = func(float64) {
		sb.updateBrightnessLabel()
		if sb.onBrightnessChanged != nil {
			sb.onBrightnessChanged()
		}
	}
	sb.updateBrightnessLabel()

	sb.detectBtn = widget.NewButtonWithIcon("Detect Faces", theme.SearchIcon(), func() {
		if sb.onDetectFaces != nil {
			sb.onDetectFaces()
		}
	})
	sb.detectBtn.Disable()
	sb.facesLabel = widget.NewLabel("")

	sb.drawingInfo = widget.NewLabel("Click and drag to draw on the image.")
	sb.drawingInfo.Wrapping = fyne.TextWrapWord
	sb.drawingInfo.Hide()

	sb.drawingCheck = widget.NewCheck("Enable Drawing", func(enabled bool) {
		if enabled {
			sb.drawingInfo.Show()
		} else {
			sb.drawingInfo.Hide()
		}
		if sb.onDrawingToggled != nil {
			sb.onDrawingToggled()
		}
	})
	sb.drawingCheck.Disable()

	sb.metricsLabel = widget.NewLabel("No image loaded")
	sb.metricsLabel.Wrapping = fyne.TextWrapWord

	content := container.NewVBox(
		widget.NewCard("🌈 Color Manipulation", "", container.NewVBox(sb.brightnessLabel, sb.brightnessSlider)),
		widget.NewCard("🎨 Filter Effects", "", widget.NewLabel("Grayscale")),
		widget.NewCard("👀 Object Detection", "", container.NewVBox(sb.detectBtn, sb.facesLabel)),
		widget.NewCard("✏️ Drawing", "", container.NewVBox(sb.drawingCheck, sb.drawingInfo)),
		widget.NewCard("📊 Quality", "", sb.metricsLabel),
	)

	sb.container = container.NewVScroll(content)
	sb.container.SetMinSize(fyne.NewSize(260, 0))
}

func (sb *Sidebar) updateBrightnessLabel() {
	sb.brightnessLabel.SetText(fmt.Sprintf("Brightness: %.2f", sb.brightnessSlider.Value))
}

func (sb *Sidebar) Brightness() float64 {
	return sb.brightnessSlider.Value
}

func (sb *Sidebar) DrawingEnabled() bool {
	return sb.drawingCheck.Checked
}

// SetFaces reports the outcome of the latest detection run.
func (sb *Sidebar) SetFaces(detected bool, count int) {
	switch {
	case !detected:
		sb.facesLabel.SetText("")
	case count == 1:
		sb.facesLabel.SetText("1 face detected")
	default:
		sb.facesLabel.SetText(fmt.Sprintf("%d faces detected", count))
	}
}

// SetMetrics shows how far the brightened and grayscale results are from
// the original.
func (sb *Sidebar) SetMetrics(brightness, grayscale map[string]float64) {
	var b strings.Builder
	b.WriteString("Brightened vs original\n")
	writeMetrics(&b, brightness)
	b.WriteString("\nGrayscale vs original\n")
	writeMetrics(&b, grayscale)
	sb.metricsLabel.SetText(b.String())
}

func writeMetrics(b *strings.Builder, values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := values[name]
		if math.IsInf(v, 1) {
			fmt.Fprintf(b, "  %s: ∞\n", name)
			continue
		}
		fmt.Fprintf(b, "  %s: %.2f\n", name, v)
	}
}

func (sb *Sidebar) Enable() {
	sb.detectBtn.Enable()
	sb.drawingCheck.Enable()
}

func (sb *Sidebar) Reset() {
	sb.detectBtn.Disable()
	sb.drawingCheck.SetChecked(false)
	sb.drawingCheck.Disable()
	sb.facesLabel.SetText("")
	sb.metricsLabel.SetText("No image loaded")
}

func (sb *Sidebar) GetContainer() fyne.CanvasObject {
	return sb.container
}

func (sb *Sidebar) SetCallbacks(onBrightnessChanged, onDetectFaces, onDrawingToggled func()) {
	sb.onBrightnessChanged = onBrightnessChanged
	sb.onDetectFaces = onDetectFaces
	sb.onDrawingToggled = onDrawingToggled
}
