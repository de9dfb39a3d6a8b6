// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"plan-annotator/internal/app"
	"plan-annotator/internal/importer"
	"plan-annotator/internal/logger"
	"plan-annotator/internal/viewport"
	"plan-annotator/ui/canvas"
	"plan-annotator/ui/panels"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app        fyne.App
	controller *app.Controller
	importer   *importer.Importer

	viewport  *canvas.Viewport
	docsPanel *panels.DocumentsPanel
	annoPanel *panels.AnnotationPanel
	statusBar *widget.Label

	annotateBtn *widget.Button
	panBtn      *widget.Button
}

// New creates the main window.
func New(fyneApp fyne.App, controller *app.Controller, imp *importer.Importer) *MainWindow {
	win := fyneApp.NewWindow("Plan Annotator")

	mw := &MainWindow{
		Window:     win,
		app:        fyneApp,
		controller: controller,
		importer:   imp,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	win.Resize(fyne.NewSize(1280, 820))
	return mw
}

// setupUI creates the main layout.
func (mw *MainWindow) setupUI() {
	mw.viewport = canvas.New(mw.controller, canvas.NewDefaultRenderer())

	mw.docsPanel = panels.NewDocumentsPanel(mw.controller)
	mw.docsPanel.SetWindow(mw.Window)
	mw.docsPanel.OnImport = func() { mw.onImportDocument(false) }
	mw.docsPanel.OnReplace = func() { mw.onImportDocument(true) }

	mw.annoPanel = panels.NewAnnotationPanel(mw.controller)
	mw.annoPanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	viewportArea := container.NewBorder(
		toolbar,
		nil, nil, nil,
		mw.viewport,
	)

	sidePanel := container.NewVSplit(
		mw.docsPanel.Container(),
		container.NewVScroll(mw.annoPanel.Container()),
	)
	sidePanel.SetOffset(0.4)

	split := container.NewHSplit(sidePanel, viewportArea)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	)

	mw.SetContent(content)
}

// createToolbar builds the viewport controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", mw.controller.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.controller.ZoomIn)
	fitBtn := widget.NewButton("Fit", func() {
		mw.controller.FitToView(mw.viewport.ViewRect())
	})
	actualBtn := widget.NewButton("1:1", mw.controller.ActualSize)
	rotateBtn := widget.NewButton("Rotate", mw.controller.RotateCW)

	mw.annotateBtn = widget.NewButton("Annotate", func() {
		if mw.controller.Mode() == viewport.ModePlacing {
			mw.controller.CancelMode()
		} else {
			mw.controller.EnterPlacing()
		}
	})
	mw.panBtn = widget.NewButton("Pan", mw.controller.TogglePanning)

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		actualBtn,
		widget.NewSeparator(),
		rotateBtn,
		widget.NewSeparator(),
		mw.annotateBtn,
		mw.panBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	projectMenu := fyne.NewMenu("Project",
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset Project...", mw.onResetProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	documentMenu := fyne.NewMenu("Document",
		fyne.NewMenuItem("Import Document...", func() { mw.onImportDocument(false) }),
		fyne.NewMenuItem("Replace Active Content...", func() { mw.onImportDocument(true) }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.controller.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.controller.ZoomOut),
		fyne.NewMenuItem("Fit to Window", func() {
			mw.controller.FitToView(mw.viewport.ViewRect())
		}),
		fyne.NewMenuItem("Actual Size", mw.controller.ActualSize),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Rotate Clockwise", mw.controller.RotateCW),
		fyne.NewMenuItem("Rotate Counter-Clockwise", mw.controller.RotateCCW),
	)

	mw.SetMainMenu(fyne.NewMainMenu(projectMenu, documentMenu, viewMenu))
}

// setupEventHandlers keeps the status bar and toggle buttons in sync.
func (mw *MainWindow) setupEventHandlers() {
	update := func(interface{}) { mw.updateStatus() }
	mw.controller.On(app.EventViewportChanged, update)
	mw.controller.On(app.EventModeChanged, update)
	mw.controller.On(app.EventActiveDocumentChanged, update)
	mw.controller.On(app.EventSaveFailed, func(data interface{}) {
		mw.statusBar.SetText(fmt.Sprintf("Save failed: %v", data))
	})
	mw.updateStatus()
}

func (mw *MainWindow) updateStatus() {
	mode := mw.controller.Mode()
	name := "no document"
	if d := mw.controller.ActiveDocument(); d != nil {
		name = d.Name
	}
	mw.statusBar.SetText(fmt.Sprintf("%s | zoom %.0f%% | %s",
		name, mw.controller.Zoom()*100, mode))

	if mw.annotateBtn != nil {
		if mode == viewport.ModePlacing {
			mw.annotateBtn.Importance = widget.HighImportance
		} else {
			mw.annotateBtn.Importance = widget.MediumImportance
		}
		mw.annotateBtn.Refresh()
	}
	if mw.panBtn != nil {
		if mode == viewport.ModePanning {
			mw.panBtn.Importance = widget.HighImportance
		} else {
			mw.panBtn.Importance = widget.MediumImportance
		}
		mw.panBtn.Refresh()
	}
}

// onImportDocument opens the file dialog. replace selects between adding
// a new document and swapping the active document's content; the two are
// never inferred from each other.
func (mw *MainWindow) onImportDocument(replace bool) {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()

		name := rc.URI().Name()
		data, err := io.ReadAll(rc)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}

		// Re-encoding large rasters must not stall the event loop.
		go func() {
			res, err := mw.importer.Import(data, filepath.Ext(name), trimExt(name))
			if err != nil {
				logger.Warn("import failed: %v", err)
				return
			}
			if replace {
				mw.controller.ReplaceActiveDocument(res.SourceRef, res.Name)
			} else {
				mw.controller.ImportDocument(res.SourceRef, res.Name, res.Kind)
			}
		}()
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(importer.FileFilter()))
	fd.Show()
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func (mw *MainWindow) onOpenProject() {
	entry := widget.NewEntry()
	entry.SetText(mw.controller.ProjectID())
	dialog.ShowForm("Open Project", "Open", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Project ID", entry)},
		func(ok bool) {
			if ok && entry.Text != "" {
				mw.controller.OpenProject(entry.Text)
			}
		}, mw.Window)
}

func (mw *MainWindow) onResetProject() {
	dialog.ShowConfirm("Reset Project",
		"Remove all documents and annotations of this project?",
		func(ok bool) {
			if ok {
				mw.controller.ResetProject()
			}
		}, mw.Window)
}
