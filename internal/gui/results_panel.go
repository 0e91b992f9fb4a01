// Row of derived images plus the display-only drawing overlay
package gui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type ResultsPanel struct {
	container *fyne.Container

	brightened *ImageView
	grayscale  *ImageView
	faces      *ImageView

	drawing     *ImageView
	drawingCard *fyne.Container
}

func NewResultsPanel() *ResultsPanel {
	rp := &ResultsPanel{
		brightened: NewImageView("Brightened Image"),
		grayscale:  NewImageView("Grayscale Image"),
		faces:      NewImageView("Faces Detected"),
		drawing:    NewImageView("Drawing"),
	}

	info := widget.NewLabel("Drawing enabled. Click and drag on the image.")
	rp.drawingCard = container.NewVBox(rp.drawing.GetContainer(), info)
	rp.drawingCard.Hide()

	rp.container = container.NewVBox(
		rp.drawingCard,
		container.NewGridWithColumns(3,
			rp.brightened.GetContainer(),
			rp.grayscale.GetContainer(),
			rp.faces.GetContainer(),
		),
	)
	return rp
}

// SetImages updates the three result views.
func (rp *ResultsPanel) SetImages(brightened, grayscale, faces image.Image) {
	rp.brightened.SetImage(brightened)
	rp.grayscale.SetImage(grayscale)
	rp.faces.SetImage(faces)
}

// SetDrawing shows the overlay with img, or hides it when img is nil.
func (rp *ResultsPanel) SetDrawing(img image.Image) {
	if img == nil {
		rp.drawingCard.Hide()
		return
	}
	rp.drawing.SetImage(img)
	rp.drawingCard.Show()
}

func (rp *ResultsPanel) Reset() {
	rp.brightened.Reset()
	rp.grayscale.Reset()
	rp.faces.Reset()
	rp.drawing.Reset()
	rp.drawingCard.Hide()
}

func (rp *ResultsPanel) GetContainer() fyne.CanvasObject {
	return rp.container
}
