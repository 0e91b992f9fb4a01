// Main application window wiring the editor session to the panels
package gui

import (
	"fmt"
	"image"
	"path/filepath"
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-editor/internal/algorithms"
	"image-editor/internal/apperrors"
	"image-editor/internal/config"
	"image-editor/internal/core"
	"image-editor/internal/detector"
)

// Application represents the main application window
type Application struct {
	app     fyne.App
	window  fyne.Window
	logger  *logrus.Logger
	cfg     *config.Config
	session *core.Session

	toolbar     *Toolbar
	center      *CenterPanel
	sidebar     *Sidebar
	results     *ResultsPanel
	menuHandler *MenuHandler
}

func NewApplication(app fyne.App, cfg *config.Config, session *core.Session, logger *logrus.Logger) *Application {
	window := app.NewWindow("🎨 Image Editing App")
	window.Resize(fyne.NewSize(1400, 1000))
	window.CenterOnScreen()

	a := &Application{
		app:     app,
		window:  window,
		logger:  logger,
		cfg:     cfg,
		session: session,
	}

	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()

	return a
}

func (a *Application) initializeGUI() {
	a.toolbar = NewToolbar()
	a.center = NewCenterPanel(a.cfg.Controls)
	a.sidebar = NewSidebar(a.cfg.Controls)
	a.results = NewResultsPanel()
	a.menuHandler = NewMenuHandler(a.window, extensions(a.cfg.Editor.SupportedFormats), a.logger)
}

func (a *Application) setupLayout() {
	content := container.NewVScroll(container.NewVBox(
		a.center.GetContainer(),
		a.results.GetContainer(),
	))

	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.window.SetContent(container.NewBorder(
		container.NewVBox(a.toolbar.GetContainer()), // top
		nil,                      // bottom
		a.sidebar.GetContainer(), // left
		nil,                      // right
		content,
	))
}

func (a *Application) setupCallbacks() {
	a.menuHandler.SetCallbacks(a.LoadImage, a.SaveAndDownload, a.CloseImage)
	a.toolbar.SetCallbacks(a.menuHandler.OpenImage, a.SaveAndDownload)
	a.center.SetCallbacks(a.refresh)
	a.sidebar.SetCallbacks(a.refresh, a.DetectFaces, a.refresh)
}

// LoadImage replaces the current image with an uploaded file. A file that
// cannot be decoded leaves the editor as it was.
func (a *Application) LoadImage(name string, data []byte) {
	if err := a.session.Load(name, data); err != nil {
		a.showError("Failed to Load Image", err)
		return
	}

	a.center.Enable()
	a.sidebar.Enable()
	a.toolbar.Enable()
	a.refresh()
	a.updateStatusMessage(fmt.Sprintf("✅ Loaded: %s", name))
}

// CloseImage drops the loaded image and returns every panel to its
// pre-upload state.
func (a *Application) CloseImage() {
	if a.session.State() == core.StateEmpty {
		return
	}

	a.session.Unload()
	a.center.Reset()
	a.sidebar.Reset()
	a.results.Reset()
	a.toolbar.Reset()
	a.updateStatusMessage("📂 Image closed")
}

// DetectFaces runs face detection and re-renders the annotated view.
func (a *Application) DetectFaces() {
	faces, err := a.session.DetectFaces()
	if err != nil {
		a.showError("Face Detection Failed", err)
		return
	}

	a.refresh()
	a.updateStatusMessage(fmt.Sprintf("👀 Detected %d face(s)", len(faces)))
}

// SaveAndDownload writes the result to the fixed output path and then
// offers a copy through a save dialog.
func (a *Application) SaveAndDownload() {
	path, err := a.session.Save()
	if err != nil {
		a.showError("Failed to Save Image", err)
		return
	}

	a.updateStatusMessage(fmt.Sprintf("💾 Image saved successfully! (%s)", path))
	a.menuHandler.ShowDownload(filepath.Base(path), a.session.Export)
}

// refresh re-derives every displayed image from the current controls.
func (a *Application) refresh() {
	if a.session.State() != core.StateLoaded {
		return
	}

	op, err := a.center.Operation()
	if err != nil {
		a.showError("Invalid Operation", err)
		return
	}

	outputs, err := a.session.Render(core.Controls{
		Operation:      op,
		Brightness:     a.sidebar.Brightness(),
		DrawingEnabled: a.sidebar.DrawingEnabled(),
	})
	if err != nil {
		a.showError("Processing Error", err)
		return
	}
	defer outputs.Close()

	meta := a.session.Metadata()
	a.center.SetOriginal(a.preview(outputs.Original), fmt.Sprintf("%s (%dx%d)", meta.Name, meta.Width, meta.Height))

	if outputs.HasTransformed() {
		a.center.SetTransformed(a.preview(outputs.Transformed), outputs.Operation)
	} else {
		a.center.SetTransformed(nil, outputs.Operation)
	}

	a.results.SetImages(
		a.preview(outputs.Brightened),
		a.preview(outputs.Grayscale),
		a.preview(outputs.Annotated),
	)

	if outputs.Drawing.Empty() {
		a.results.SetDrawing(nil)
	} else {
		a.results.SetDrawing(a.preview(outputs.Drawing))
	}

	a.sidebar.SetFaces(outputs.Detected, len(outputs.Faces))
	a.sidebar.SetMetrics(outputs.BrightnessMetrics, outputs.GrayscaleMetrics)
}

func (a *Application) preview(mat gocv.Mat) image.Image {
	img, err := algorithms.Preview(mat, a.cfg.Editor.PreviewMaxSize)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to build preview")
		return nil
	}
	return img
}

// ApplyConfig takes over the hot-reloadable parts of a reloaded
// configuration: output path, preview size and detector settings. Formats
// and JPEG quality are fixed at startup. Must run on the UI goroutine.
func (a *Application) ApplyConfig(cfg *config.Config) {
	if cfg.Editor.JPEGQuality != a.cfg.Editor.JPEGQuality ||
		!slices.Equal(cfg.Editor.SupportedFormats, a.cfg.Editor.SupportedFormats) {
		a.logger.Warn("jpeg_quality and supported_formats changes take effect after a restart")
	}

	a.cfg.Editor.OutputPath = cfg.Editor.OutputPath
	a.cfg.Editor.PreviewMaxSize = cfg.Editor.PreviewMaxSize
	a.cfg.Detector = cfg.Detector
	a.session.SetOutputPath(cfg.Editor.OutputPath)

	det, err := detector.FromConfig(cfg, a.logger)
	if err != nil {
		a.logger.WithError(err).Warn("Keeping previous face detector")
	} else {
		a.session.SetDetector(det)
	}

	a.refresh()
	a.updateStatusMessage("⚙️ Configuration reloaded")
}

func (a *Application) updateStatusMessage(message string) {
	a.toolbar.SetStatus(message)
}

func (a *Application) ShowAndRun() {
	a.logger.Info("Showing main application window")

	a.window.SetCloseIntercept(func() {
		a.cleanup()
		a.app.Quit()
	})

	a.window.ShowAndRun()
}

func (a *Application) cleanup() {
	a.logger.Info("Cleaning up application resources")
	a.session.Close()
}

func (a *Application) showError(title string, err error) {
	a.logger.WithError(err).Error(title)
	dialog.ShowError(fmt.Errorf("%s: %s", title, apperrors.UserMessage(err)), a.window)
	a.updateStatusMessage(fmt.Sprintf("❌ %s: %s", title, apperrors.UserMessage(err)))
}

func extensions(formats []string) []string {
	exts := make([]string, 0, len(formats))
	for _, f := range formats {
		exts = append(exts, "."+f)
	}
	return exts
}
