// Menu handler for application actions
package gui

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"image-editor/internal/apperrors"
)

// MenuHandler owns the main menu and the file dialogs.
type MenuHandler struct {
	window  fyne.Window
	formats []string
	logger  *logrus.Logger

	onImageSelected func(name string, data []byte)
	onSave          func()
	onClose         func()
}

func NewMenuHandler(window fyne.Window, formats []string, logger *logrus.Logger) *MenuHandler {
	return &MenuHandler{
		window:  window,
		formats: formats,
		logger:  logger,
	}
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mh.OpenImage),
		fyne.NewMenuItem("Save and Download...", func() {
			if mh.onSave != nil {
				mh.onSave()
			}
		}),
		fyne.NewMenuItem("Close Image", func() {
			if mh.onClose != nil {
				mh.onClose()
			}
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Exit", func() {
			mh.window.Close()
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mh.showAbout),
	)

	return fyne.NewMainMenu(fileMenu, helpMenu)
}

// OpenImage shows a file picker and hands the chosen file's bytes on.
func (mh *MenuHandler) OpenImage() {
	mh.logger.Info("Opening file dialog for image selection")

	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		name := reader.URI().Name()
		data, err := io.ReadAll(reader)
		if err != nil {
			mh.showError("Failed to Read Image", err)
			return
		}

		mh.logger.WithFields(logrus.Fields{
			"name":  name,
			"bytes": len(data),
		}).Info("Image file selected")

		if mh.onImageSelected != nil {
			mh.onImageSelected(name, data)
		}
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(mh.formats))
	fileDialog.Show()
}

// ShowDownload offers a copy of the saved image wherever the user picks.
func (mh *MenuHandler) ShowDownload(defaultName string, export func(w io.Writer, ext string) error) {
	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}
		uri := writer.URI()
		err = writeDownload(writer, uri.Extension(), mh.formats, export)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			if delErr := storage.Delete(uri); delErr != nil {
				mh.logger.WithError(delErr).WithField("uri", uri.String()).Warn("Failed to remove incomplete download")
			}
			mh.showError("Download Failed", err)
			return
		}

		mh.logger.WithField("uri", uri.String()).Info("Edited image downloaded")
	}, mh.window)

	fileDialog.SetFileName(defaultName)
	fileDialog.SetFilter(storage.NewExtensionFileFilter(mh.formats))
	fileDialog.Show()
}

// writeDownload checks ext against formats before anything is written. A
// name without an extension gets JPEG.
func writeDownload(w io.Writer, ext string, formats []string, export func(io.Writer, string) error) error {
	if ext == "" {
		ext = ".jpg"
	}
	ext = strings.ToLower(ext)
	if !slices.Contains(formats, ext) {
		return apperrors.NewValidationError(
			fmt.Sprintf("unsupported download format %q (accepted: %s)", ext, strings.Join(formats, ", ")), nil)
	}
	return export(w, ext)
}

func (mh *MenuHandler) showAbout() {
	content := container.NewVBox(
		widget.NewLabel("Image Editing App"),
		widget.NewSeparator(),
		widget.NewLabel("Resize, rotate and flip images, adjust brightness,"),
		widget.NewLabel("convert to grayscale and detect faces."),
		widget.NewSeparator(),
		widget.NewLabel("Built with Go, Fyne and OpenCV"),
	)

	aboutDialog := dialog.NewCustom("About", "Close", content, mh.window)
	aboutDialog.Resize(fyne.NewSize(400, 240))
	aboutDialog.Show()
}

func (mh *MenuHandler) showError(title string, err error) {
	mh.logger.WithError(err).Error(title)
	dialog.ShowError(fmt.Errorf("%s: %w", title, err), mh.window)
}

func (mh *MenuHandler) SetCallbacks(onImageSelected func(string, []byte), onSave, onClose func()) {
	mh.onImageSelected = onImageSelected
	mh.onSave = onSave
	mh.onClose = onClose
}
