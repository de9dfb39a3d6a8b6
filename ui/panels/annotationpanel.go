package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"plan-annotator/internal/app"
)

// AnnotationPanel edits the currently selected annotation: comment,
// resolved state, photos, repositioning, deletion, and conversion to a
// task.
type AnnotationPanel struct {
	controller *app.Controller
	window     fyne.Window

	header        *widget.Label
	comment       *widget.Entry
	resolvedCheck *widget.Check
	photos        *widget.List
	photoRefs     []string

	updating bool

	container fyne.CanvasObject
}

// NewAnnotationPanel creates the annotation detail panel.
func NewAnnotationPanel(controller *app.Controller) *AnnotationPanel {
	ap := &AnnotationPanel{controller: controller}

	ap.header = widget.NewLabel("No annotation selected")
	ap.header.Wrapping = fyne.TextWrapWord

	ap.comment = widget.NewMultiLineEntry()
	ap.comment.SetPlaceHolder("Comment...")
	saveBtn := widget.NewButton("Save Comment", func() {
		if sel := ap.controller.SelectedAnnotation(); sel != nil {
			ap.controller.UpdateComment(sel.ID, ap.comment.Text)
		}
	})

	ap.resolvedCheck = widget.NewCheck("Resolved", func(bool) {
		if ap.updating {
			return
		}
		if sel := ap.controller.SelectedAnnotation(); sel != nil {
			ap.controller.ToggleResolved(sel.ID)
		}
	})

	ap.photos = widget.NewList(
		func() int { return len(ap.photoRefs) },
		func() fyne.CanvasObject {
			return widget.NewLabel("photo")
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			if i >= 0 && i < len(ap.photoRefs) {
				obj.(*widget.Label).SetText(fmt.Sprintf("Photo %d", i+1))
			}
		},
	)

	addPhotoBtn := widget.NewButton("Add Photo...", ap.onAddPhoto)
	removePhotoBtn := widget.NewButton("Remove Last Photo", func() {
		if sel := ap.controller.SelectedAnnotation(); sel != nil {
			ap.controller.RemovePhoto(sel.ID, len(sel.Photos)-1)
		}
	})

	repositionBtn := widget.NewButton("Reposition", func() {
		if sel := ap.controller.SelectedAnnotation(); sel != nil {
			ap.controller.EnterRepositioning(sel.ID)
		}
	})
	deleteBtn := widget.NewButton("Delete", ap.onDelete)
	taskBtn := widget.NewButton("Convert to Task", func() {
		if err := ap.controller.ConvertSelectedToTask(); err != nil && ap.window != nil {
			dialog.ShowError(err, ap.window)
		}
	})

	ap.container = container.NewVBox(
		widget.NewCard("Annotation", "", container.NewVBox(
			ap.header,
			ap.comment,
			saveBtn,
			ap.resolvedCheck,
		)),
		widget.NewCard("Photos", "", container.NewVBox(
			ap.photos,
			container.NewGridWithColumns(2, addPhotoBtn, removePhotoBtn),
		)),
		widget.NewCard("Actions", "", container.NewVBox(
			repositionBtn,
			taskBtn,
			deleteBtn,
		)),
	)

	controller.On(app.EventSelectionChanged, func(interface{}) { ap.reload() })
	controller.On(app.EventAnnotationsChanged, func(interface{}) { ap.reload() })
	ap.reload()

	return ap
}

// SetWindow provides the parent window for dialogs.
func (ap *AnnotationPanel) SetWindow(w fyne.Window) {
	ap.window = w
}

// Container returns the panel's root object.
func (ap *AnnotationPanel) Container() fyne.CanvasObject {
	return ap.container
}

// reload refreshes the panel from the selected annotation. The selection
// copy is always the controller's post-mutation value, so the panel never
// shows stale state.
func (ap *AnnotationPanel) reload() {
	ap.updating = true
	defer func() { ap.updating = false }()

	sel := ap.controller.SelectedAnnotation()
	if sel == nil {
		ap.header.SetText("No annotation selected")
		ap.comment.SetText("")
		ap.resolvedCheck.SetChecked(false)
		ap.photoRefs = nil
		ap.photos.Refresh()
		return
	}

	ap.header.SetText(fmt.Sprintf("By %s on %s\nat (%.2f, %.2f)",
		sel.Author,
		sel.CreatedAt.Format("2006-01-02 15:04"),
		sel.Position.X, sel.Position.Y))
	ap.comment.SetText(sel.Comment)
	ap.resolvedCheck.SetChecked(sel.Resolved)
	ap.photoRefs = sel.Photos
	ap.photos.Refresh()
}

func (ap *AnnotationPanel) onAddPhoto() {
	sel := ap.controller.SelectedAnnotation()
	if sel == nil || ap.window == nil {
		return
	}
	entry := widget.NewEntry()
	entry.SetPlaceHolder("photo reference or URL")
	dialog.ShowForm("Add Photo", "Add", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Ref", entry)},
		func(ok bool) {
			if ok && entry.Text != "" {
				ap.controller.AddPhoto(sel.ID, entry.Text)
			}
		}, ap.window)
}

func (ap *AnnotationPanel) onDelete() {
	sel := ap.controller.SelectedAnnotation()
	if sel == nil || ap.window == nil {
		return
	}
	dialog.ShowConfirm("Delete Annotation", "Delete this annotation?",
		func(ok bool) {
			if ok {
				ap.controller.DeleteAnnotation(sel.ID)
			}
		}, ap.window)
}
