// Package panels provides the side panels of the main window.
package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"plan-annotator/internal/app"
	"plan-annotator/internal/document"
)

// DocumentsPanel lists the project documents and hosts the import
// actions. Importing a new document and replacing the active document's
// content are separate buttons on purpose: the user's intent decides,
// never the panel.
type DocumentsPanel struct {
	controller *app.Controller
	window     fyne.Window

	docs []*document.Document
	list *widget.List

	// OnImport and OnReplace are wired by the main window to the file
	// dialogs.
	OnImport  func()
	OnReplace func()

	container fyne.CanvasObject
}

// NewDocumentsPanel creates the documents panel.
func NewDocumentsPanel(controller *app.Controller) *DocumentsPanel {
	dp := &DocumentsPanel{controller: controller}

	dp.list = widget.NewList(
		func() int { return len(dp.docs) },
		func() fyne.CanvasObject {
			return widget.NewLabel("document")
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			if i < 0 || i >= len(dp.docs) {
				return
			}
			d := dp.docs[i]
			label := obj.(*widget.Label)
			text := d.Name
			if d.Kind == document.KindPaginated {
				text += "  (pdf)"
			}
			if len(d.Annotations) > 0 {
				text = fmt.Sprintf("%s  [%d]", text, len(d.Annotations))
			}
			label.SetText(text)
		},
	)
	dp.list.OnSelected = func(i widget.ListItemID) {
		if i >= 0 && i < len(dp.docs) {
			dp.controller.SelectDocument(dp.docs[i].ID)
		}
	}

	importBtn := widget.NewButton("Import Document...", func() {
		if dp.OnImport != nil {
			dp.OnImport()
		}
	})
	replaceBtn := widget.NewButton("Replace Content...", func() {
		if dp.OnReplace != nil {
			dp.OnReplace()
		}
	})
	renameBtn := widget.NewButton("Rename", dp.onRename)
	removeBtn := widget.NewButton("Remove", dp.onRemove)

	dp.container = container.NewBorder(
		widget.NewCard("Documents", "", container.NewVBox(
			importBtn,
			replaceBtn,
			container.NewGridWithColumns(2, renameBtn, removeBtn),
		)),
		nil, nil, nil,
		dp.list,
	)

	controller.On(app.EventDocumentsChanged, func(interface{}) { dp.reload() })
	controller.On(app.EventActiveDocumentChanged, func(interface{}) { dp.reload() })
	controller.On(app.EventAnnotationsChanged, func(interface{}) { dp.reload() })
	dp.reload()

	return dp
}

// SetWindow provides the parent window for dialogs.
func (dp *DocumentsPanel) SetWindow(w fyne.Window) {
	dp.window = w
}

// Container returns the panel's root object.
func (dp *DocumentsPanel) Container() fyne.CanvasObject {
	return dp.container
}

func (dp *DocumentsPanel) reload() {
	dp.docs = dp.controller.Documents()
	activeID := ""
	if d := dp.controller.ActiveDocument(); d != nil {
		activeID = d.ID
	}
	for i, d := range dp.docs {
		if d.ID == activeID {
			dp.list.Select(i)
			break
		}
	}
	dp.list.Refresh()
}

func (dp *DocumentsPanel) onRename() {
	active := dp.controller.ActiveDocument()
	if active == nil || dp.window == nil {
		return
	}
	entry := widget.NewEntry()
	entry.SetText(active.Name)
	dialog.ShowForm("Rename Document", "Rename", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", entry)},
		func(ok bool) {
			if ok && entry.Text != "" {
				dp.controller.RenameDocument(active.ID, entry.Text)
			}
		}, dp.window)
}

func (dp *DocumentsPanel) onRemove() {
	active := dp.controller.ActiveDocument()
	if active == nil || dp.window == nil {
		return
	}
	dialog.ShowConfirm("Remove Document",
		fmt.Sprintf("Remove %q and its annotations?", active.Name),
		func(ok bool) {
			if ok {
				dp.controller.RemoveDocument(active.ID)
			}
		}, dp.window)
}
