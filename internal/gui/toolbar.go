// Top toolbar with file actions and status
package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type Toolbar struct {
	container *fyne.Container

	openBtn     *widget.Button
	saveBtn     *widget.Button
	statusLabel *widget.Label

	onOpen func()
	onSave func()
}

func NewToolbar() *Toolbar {
	tb := &Toolbar{}
	tb.initializeUI()
	return tb
}

func (tb *Toolbar) initializeUI() {
	titleLabel := widget.NewLabelWithStyle("🎨 Image Editing App", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	tb.openBtn = widget.NewButtonWithIcon("📷 Choose an image...", theme.FolderOpenIcon(), func() {
		if tb.onOpen != nil {
			tb.onOpen()
		}
	})
	tb.openBtn.Importance = widget.HighImportance

	tb.saveBtn = widget.NewButtonWithIcon("💾 Save and Download", theme.DocumentSaveIcon(), func() {
		if tb.onSave != nil {
			tb.onSave()
		}
	})
	tb.saveBtn.Importance = widget.HighImportance
	tb.saveBtn.Disable()

	tb.statusLabel = widget.NewLabel("Upload a .jpg, .jpeg or .png image to start")
	tb.statusLabel.Truncation = fyne.TextTruncateEllipsis

	tb.container = container.NewBorder(nil, nil,
		container.NewHBox(titleLabel, widget.NewSeparator(), tb.openBtn, tb.saveBtn),
		nil,
		tb.statusLabel,
	)
}

func (tb *Toolbar) SetStatus(message string) {
	tb.statusLabel.SetText(message)
}

func (tb *Toolbar) Status() string {
	return tb.statusLabel.Text
}

func (tb *Toolbar) Enable() {
	tb.saveBtn.Enable()
}

func (tb *Toolbar) Reset() {
	tb.saveBtn.Disable()
}

func (tb *Toolbar) GetContainer() fyne.CanvasObject {
	return tb.container
}

func (tb *Toolbar) SetCallbacks(onOpen, onSave func()) {
	tb.onOpen = onOpen
	tb.onSave = onSave
}
