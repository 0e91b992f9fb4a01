// Shared image display helpers
package gui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

var imageMinSize = fyne.NewSize(320, 240)

// ImageView is a titled card showing one image.
type ImageView struct {
	card  *widget.Card
	image *canvas.Image
}

func NewImageView(title string) *ImageView {
	img := canvas.NewImageFromImage(createPlaceholderImage())
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(imageMinSize)

	return &ImageView{
		card:  widget.NewCard(title, "", img),
		image: img,
	}
}

// SetImage displays src, or the placeholder when src is nil.
func (v *ImageView) SetImage(src image.Image) {
	if src == nil {
		src = createPlaceholderImage()
	}
	v.image.Image = src
	v.image.Refresh()
}

func (v *ImageView) SetSubTitle(text string) {
	v.card.SetSubTitle(text)
}

// Image returns the currently displayed image.
func (v *ImageView) Image() image.Image {
	return v.image.Image
}

func (v *ImageView) Reset() {
	v.SetImage(nil)
	v.card.SetSubTitle("")
}

func (v *ImageView) GetContainer() fyne.CanvasObject {
	return v.card
}

func createPlaceholderImage() image.Image {
	placeholder := image.NewRGBA(image.Rect(0, 0, 400, 300))
	gray := color.RGBA{245, 245, 245, 255}

	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			placeholder.Set(x, y, gray)
		}
	}

	return placeholder
}
