// Original image next to the selected geometric operation
package gui

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"image-editor/internal/algorithms"
	"image-editor/internal/config"
)

type CenterPanel struct {
	container *container.Split

	original    *ImageView
	transformed *ImageView

	operationSelect *widget.Select
	widthSlider     *widget.Slider
	heightSlider    *widget.Slider
	angleSlider     *widget.Slider
	widthLabel      *widget.Label
	heightLabel     *widget.Label
	angleLabel      *widget.Label
	resizeControls  *fyne.Container
	rotateControls  *fyne.Container

	onChanged func()
}

func NewCenterPanel(controls config.ControlsConfig) *CenterPanel {
	cp := &CenterPanel{}
	cp.initializeUI(controls)
	return cp
}

func (cp *CenterPanel) initializeUI(controls config.ControlsConfig) {
	cp.original = NewImageView("Original Image")
	cp.transformed = NewImageView("Edited Image")

	cp.widthLabel = widget.NewLabel("")
	cp.widthSlider = widget.NewSlider(config.MinDimension, config.MaxDimension)
	cp.widthSlider.Step = 1
	cp.widthSlider.SetValue(float64(controls.Width))
	cp.widthSlider.OnChanged = func(float64) { cp.parameterChanged() }

	cp.heightLabel = widget.NewLabel("")
	cp.heightSlider = widget.NewSlider(config.MinDimension, config.MaxDimension)
	cp.heightSlider.Step = 1
	cp.heightSlider.SetValue(float64(controls.Height))
	cp.heightSlider.OnChanged = func(float64) { cp.parameterChanged() }

	cp.angleLabel = widget.NewLabel("")
	cp.angleSlider = widget.NewSlider(config.MinAngle, config.MaxAngle)
	cp.angleSlider.Step = 1
	cp.angleSlider.SetValue(controls.Angle)
	cp.angleSlider.OnChanged = func(float64) { cp.parameterChanged() }

	cp.resizeControls = container.NewVBox(
		cp.widthLabel, cp.widthSlider,
		cp.heightLabel, cp.heightSlider,
	)
	cp.rotateControls = container.NewVBox(cp.angleLabel, cp.angleSlider)

	cp.operationSelect = widget.NewSelect(algorithms.OperationNames(), func(string) {
		cp.updateVisibleControls()
		cp.parameterChanged()
	})
	cp.operationSelect.SetSelected(algorithms.None{}.Name())
	cp.operationSelect.Disable()

	cp.updateLabels()
	cp.updateVisibleControls()

	operations := container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("🔧 Basic Operations", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewLabel("Select Operation"),
			cp.operationSelect,
			cp.resizeControls,
			cp.rotateControls,
		),
		nil, nil, nil,
		cp.transformed.GetContainer(),
	)

	cp.container = container.NewHSplit(cp.original.GetContainer(), operations)
	cp.container.SetOffset(0.5)
}

func (cp *CenterPanel) parameterChanged() {
	cp.updateLabels()
	if cp.onChanged != nil {
		cp.onChanged()
	}
}

func (cp *CenterPanel) updateLabels() {
	cp.widthLabel.SetText(fmt.Sprintf("New Width: %d", int(cp.widthSlider.Value)))
	cp.heightLabel.SetText(fmt.Sprintf("New Height: %d", int(cp.heightSlider.Value)))
	cp.angleLabel.SetText(fmt.Sprintf("Rotation Angle: %d°", int(cp.angleSlider.Value)))
}

func (cp *CenterPanel) updateVisibleControls() {
	cp.resizeControls.Hide()
	cp.rotateControls.Hide()

	switch cp.operationSelect.Selected {
	case algorithms.Resize{}.Name():
		cp.resizeControls.Show()
	case algorithms.Rotate{}.Name():
		cp.rotateControls.Show()
	}
}

// Operation returns the operation described by the current controls.
func (cp *CenterPanel) Operation() (algorithms.Operation, error) {
	return algorithms.ParseOperation(
		cp.operationSelect.Selected,
		int(cp.widthSlider.Value),
		int(cp.heightSlider.Value),
		cp.angleSlider.Value,
	)
}

func (cp *CenterPanel) SetOriginal(img image.Image, info string) {
	cp.original.SetImage(img)
	cp.original.SetSubTitle(info)
}

// SetTransformed shows img under the operation name; nil clears the view.
func (cp *CenterPanel) SetTransformed(img image.Image, operation string) {
	cp.transformed.SetImage(img)
	if img == nil {
		cp.transformed.SetSubTitle("")
		return
	}
	cp.transformed.SetSubTitle(fmt.Sprintf("%s Image", operation))
}

func (cp *CenterPanel) Enable() {
	cp.operationSelect.Enable()
}

func (cp *CenterPanel) Reset() {
	cp.original.Reset()
	cp.transformed.Reset()
	cp.operationSelect.Disable()
}

func (cp *CenterPanel) GetContainer() fyne.CanvasObject {
	return cp.container
}

func (cp *CenterPanel) SetCallbacks(onChanged func()) {
	cp.onChanged = onChanged
}
