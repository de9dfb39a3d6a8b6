// Package app provides the composition root that wires the viewport,
// stores, and persistence together.
package app

import (
	"sync"

	"plan-annotator/internal/annotation"
	"plan-annotator/internal/config"
	"plan-annotator/internal/document"
	"plan-annotator/internal/logger"
	"plan-annotator/internal/persist"
	"plan-annotator/internal/task"
	"plan-annotator/internal/viewport"
	"plan-annotator/pkg/geometry"
)

// EventType identifies controller events the UI can subscribe to.
type EventType int

const (
	EventDocumentsChanged EventType = iota
	EventActiveDocumentChanged
	EventAnnotationsChanged
	EventSelectionChanged
	EventViewportChanged
	EventModeChanged
	EventSaveFailed
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

type event struct {
	t    EventType
	data interface{}
}

// Controller owns the session state of one project: the document
// registry, the annotation store bound to the active document, the
// viewport state, and the interaction modes. All mutations flow through
// it; every mutation resynchronizes the selected-annotation copy and
// triggers a persistence save.
type Controller struct {
	mu sync.RWMutex

	cfg       config.Config
	projectID string
	author    string

	registry  *document.Registry
	store     *annotation.Store
	vp        *viewport.State
	modes     *viewport.ModeController
	gateway   *persist.Gateway
	converter task.Converter

	contentSize geometry.Size
	selected    *annotation.Annotation

	listenerMu sync.RWMutex
	listeners  map[EventType][]EventListener
}

// NewController creates a controller for a project. Call OpenProject to
// restore persisted state.
func NewController(cfg config.Config, gateway *persist.Gateway, converter task.Converter, projectID, author string) *Controller {
	c := &Controller{
		cfg:       cfg,
		projectID: projectID,
		author:    author,
		registry:  document.NewRegistry(),
		vp:        viewport.NewState(cfg.Viewport),
		modes:     viewport.NewModeController(),
		gateway:   gateway,
		converter: converter,
		listeners: make(map[EventType][]EventListener),
	}
	c.bindStoreLocked()
	return c
}

// On registers an event listener for the specified event type.
func (c *Controller) On(t EventType, listener EventListener) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.listeners[t] = append(c.listeners[t], listener)
}

func (c *Controller) emit(events []event) {
	for _, ev := range events {
		c.listenerMu.RLock()
		listeners := c.listeners[ev.t]
		c.listenerMu.RUnlock()
		for _, l := range listeners {
			l(ev.data)
		}
	}
}

// Config returns the loaded application configuration.
func (c *Controller) Config() config.Config {
	return c.cfg
}

// ProjectID returns the current project identity.
func (c *Controller) ProjectID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projectID
}

// OpenProject restores the persisted snapshot of a project, or starts
// empty when none exists.
func (c *Controller) OpenProject(projectID string) {
	c.mu.Lock()
	c.projectID = projectID
	if snap, ok := c.gateway.Load(projectID); ok {
		c.registry.Restore(snap.Documents, snap.ActiveDocumentID)
		logger.Info("project %s: restored %d documents", projectID, len(snap.Documents))
	} else {
		c.registry.Reset()
	}
	c.selected = nil
	c.vp.Reset()
	c.modes.Cancel()
	c.bindStoreLocked()
	c.mu.Unlock()

	c.emit([]event{
		{EventDocumentsChanged, nil},
		{EventActiveDocumentChanged, nil},
		{EventAnnotationsChanged, nil},
		{EventSelectionChanged, nil},
		{EventViewportChanged, nil},
		{EventModeChanged, nil},
	})
}

// bindStoreLocked rebuilds the annotation store around the active
// document. Caller holds mu.
func (c *Controller) bindStoreLocked() {
	active := c.registry.Active()
	if active == nil {
		c.store = annotation.NewStore("", c.author)
		return
	}
	c.store = annotation.NewStore(active.ID, c.author)
	c.store.Restore(active.Annotations)
}

// syncAndSaveLocked writes the live annotation list back into the
// registry and persists the project. Caller holds mu. A failed save only
// fails to persist; in-memory state stays authoritative.
func (c *Controller) syncAndSaveLocked() []event {
	if id := c.registry.ActiveID(); id != "" {
		c.registry.SetAnnotations(id, c.store.All())
	}
	if err := c.gateway.Save(c.projectID, c.registry.All(), c.registry.ActiveID()); err != nil {
		logger.Warn("save failed for project %s: %v", c.projectID, err)
		return []event{{EventSaveFailed, err}}
	}
	return nil
}

// --- documents ---

// Documents returns copies of the project's documents.
func (c *Controller) Documents() []*document.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry.All()
}

// ActiveDocument returns a copy of the active document, or nil.
func (c *Controller) ActiveDocument() *document.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry.Active()
}

// ImportDocument adds a new document and makes it active. This is
// distinct from ReplaceActiveDocument; the caller chooses the intent.
func (c *Controller) ImportDocument(sourceRef, name string, kind document.Kind) *document.Document {
	c.mu.Lock()
	d := c.registry.Add(sourceRef, name, kind)
	c.selected = nil
	c.vp.Reset()
	c.contentSize = geometry.Size{}
	c.bindStoreLocked()
	events := append([]event{
		{EventDocumentsChanged, nil},
		{EventActiveDocumentChanged, d.ID},
		{EventAnnotationsChanged, nil},
		{EventSelectionChanged, nil},
		{EventViewportChanged, nil},
	}, c.syncAndSaveLocked()...)
	c.mu.Unlock()

	c.emit(events)
	return d
}

// ReplaceActiveDocument swaps the active document's content in place,
// keeping its identity and annotations.
func (c *Controller) ReplaceActiveDocument(sourceRef, name string) *document.Document {
	c.mu.Lock()
	d := c.registry.ReplaceActiveContent(sourceRef, name)
	var events []event
	if d != nil {
		c.contentSize = geometry.Size{}
		events = append([]event{{EventActiveDocumentChanged, d.ID}}, c.syncAndSaveLocked()...)
	}
	c.mu.Unlock()

	c.emit(events)
	return d
}

// SelectDocument makes a document active, resetting the viewport and
// clearing the annotation selection when the active document changes.
func (c *Controller) SelectDocument(id string) bool {
	c.mu.Lock()
	changed, ok := c.registry.Select(id)
	var events []event
	if changed {
		c.selected = nil
		c.vp.Reset()
		c.modes.Cancel()
		c.contentSize = geometry.Size{}
		c.bindStoreLocked()
		events = append([]event{
			{EventActiveDocumentChanged, id},
			{EventAnnotationsChanged, nil},
			{EventSelectionChanged, nil},
			{EventViewportChanged, nil},
			{EventModeChanged, nil},
		}, c.syncAndSaveLocked()...)
	}
	c.mu.Unlock()

	c.emit(events)
	return ok
}

// RenameDocument changes a document's display name.
func (c *Controller) RenameDocument(id, name string) *document.Document {
	c.mu.Lock()
	d := c.registry.Rename(id, name)
	var events []event
	if d != nil {
		events = append([]event{{EventDocumentsChanged, nil}}, c.syncAndSaveLocked()...)
	}
	c.mu.Unlock()

	c.emit(events)
	return d
}

// RemoveDocument deletes a document and its annotations.
func (c *Controller) RemoveDocument(id string) bool {
	c.mu.Lock()
	activeBefore := c.registry.ActiveID()
	ok := c.registry.Remove(id)
	var events []event
	if ok {
		events = append(events, event{EventDocumentsChanged, nil})
		if activeBefore == id {
			c.selected = nil
			c.vp.Reset()
			c.contentSize = geometry.Size{}
			c.bindStoreLocked()
			events = append(events,
				event{EventActiveDocumentChanged, c.registry.ActiveID()},
				event{EventAnnotationsChanged, nil},
				event{EventSelectionChanged, nil},
				event{EventViewportChanged, nil},
			)
		}
		events = append(events, c.syncAndSaveLocked()...)
	}
	c.mu.Unlock()

	c.emit(events)
	return ok
}

// ResetProject clears the document collection and the persisted state.
// Confirmation is the UI's responsibility.
func (c *Controller) ResetProject() {
	c.mu.Lock()
	c.registry.Reset()
	c.selected = nil
	c.vp.Reset()
	c.modes.Cancel()
	c.contentSize = geometry.Size{}
	c.bindStoreLocked()
	var events []event
	if err := c.gateway.Clear(c.projectID); err != nil {
		events = append(events, event{EventSaveFailed, err})
	}
	events = append(events,
		event{EventDocumentsChanged, nil},
		event{EventActiveDocumentChanged, nil},
		event{EventAnnotationsChanged, nil},
		event{EventSelectionChanged, nil},
		event{EventViewportChanged, nil},
		event{EventModeChanged, nil},
	)
	c.mu.Unlock()

	c.emit(events)
}

// --- annotations ---

// Annotations returns copies of the active document's annotations.
func (c *Controller) Annotations() []*annotation.Annotation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.All()
}

// SelectedAnnotation returns a copy of the current selection, always the
// post-mutation value, or nil.
func (c *Controller) SelectedAnnotation() *annotation.Annotation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == nil {
		return nil
	}
	return c.selected.Clone()
}

// SelectAnnotation selects an annotation by id; an unknown id clears the
// selection.
func (c *Controller) SelectAnnotation(id string) {
	c.mu.Lock()
	c.selected = c.store.Get(id)
	c.mu.Unlock()

	c.emit([]event{{EventSelectionChanged, nil}})
}

// ClearSelection drops the annotation selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.selected = nil
	c.mu.Unlock()

	c.emit([]event{{EventSelectionChanged, nil}})
}

// resyncSelectionLocked replaces the held selection copy with the fresh
// mutator result when the mutated annotation is the selected one.
func (c *Controller) resyncSelectionLocked(fresh *annotation.Annotation) {
	if fresh != nil && c.selected != nil && c.selected.ID == fresh.ID {
		c.selected = fresh
	}
}

// mutateAnnotation runs one store mutation, resyncs the selection, and
// saves. The fresh annotation (nil for unknown ids) is returned to the
// caller for the same reason.
func (c *Controller) mutateAnnotation(fn func(s *annotation.Store) *annotation.Annotation) *annotation.Annotation {
	c.mu.Lock()
	fresh := fn(c.store)
	var events []event
	if fresh != nil {
		c.resyncSelectionLocked(fresh)
		events = append([]event{
			{EventAnnotationsChanged, nil},
			{EventSelectionChanged, nil},
		}, c.syncAndSaveLocked()...)
	}
	c.mu.Unlock()

	c.emit(events)
	return fresh
}

// UpdateComment replaces an annotation's comment.
func (c *Controller) UpdateComment(id, text string) *annotation.Annotation {
	return c.mutateAnnotation(func(s *annotation.Store) *annotation.Annotation {
		return s.UpdateComment(id, text)
	})
}

// ToggleResolved flips an annotation's resolved flag.
func (c *Controller) ToggleResolved(id string) *annotation.Annotation {
	return c.mutateAnnotation(func(s *annotation.Store) *annotation.Annotation {
		return s.ToggleResolved(id)
	})
}

// AddPhoto appends a photo reference to an annotation.
func (c *Controller) AddPhoto(id, photoRef string) *annotation.Annotation {
	return c.mutateAnnotation(func(s *annotation.Store) *annotation.Annotation {
		return s.AddPhoto(id, photoRef)
	})
}

// RemovePhoto removes an annotation photo by index.
func (c *Controller) RemovePhoto(id string, index int) *annotation.Annotation {
	return c.mutateAnnotation(func(s *annotation.Store) *annotation.Annotation {
		return s.RemovePhoto(id, index)
	})
}

// DeleteAnnotation removes an annotation, clearing the selection if it
// was selected.
func (c *Controller) DeleteAnnotation(id string) bool {
	c.mu.Lock()
	ok := c.store.Delete(id)
	var events []event
	if ok {
		if c.selected != nil && c.selected.ID == id {
			c.selected = nil
		}
		events = append([]event{
			{EventAnnotationsChanged, nil},
			{EventSelectionChanged, nil},
		}, c.syncAndSaveLocked()...)
	}
	c.mu.Unlock()

	c.emit(events)
	return ok
}

// ConvertSelectedToTask hands the selected annotation to the task
// collaborator and marks it resolved on success.
func (c *Controller) ConvertSelectedToTask() error {
	c.mu.RLock()
	var selected *annotation.Annotation
	if c.selected != nil {
		selected = c.selected.Clone()
	}
	c.mu.RUnlock()
	if selected == nil {
		return nil
	}
	if err := c.converter.Convert(selected); err != nil {
		return err
	}
	if !selected.Resolved {
		c.ToggleResolved(selected.ID)
	}
	return nil
}

// --- viewport ---

// SetContentSize records the active document's content extent in pixels.
// The render surface calls this once it has decoded the document.
func (c *Controller) SetContentSize(size geometry.Size) {
	c.mu.Lock()
	c.contentSize = size
	c.mu.Unlock()
}

// Params assembles the transform parameters for the given viewport
// rectangle.
func (c *Controller) Params(viewRect geometry.Rect) viewport.Params {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vp.Params(viewRect, c.contentSize)
}

// Zoom returns the current zoom factor.
func (c *Controller) Zoom() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vp.Zoom()
}

// Rotation returns the current viewport rotation.
func (c *Controller) Rotation() viewport.Rotation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vp.Rotation()
}

func (c *Controller) viewportOp(fn func(s *viewport.State)) {
	c.mu.Lock()
	fn(c.vp)
	c.mu.Unlock()

	c.emit([]event{{EventViewportChanged, nil}})
}

// ZoomIn increases the zoom by the configured step.
func (c *Controller) ZoomIn() { c.viewportOp((*viewport.State).ZoomIn) }

// ZoomOut decreases the zoom by the configured step.
func (c *Controller) ZoomOut() { c.viewportOp((*viewport.State).ZoomOut) }

// SetZoom sets the zoom factor, clamped to the configured bounds.
func (c *Controller) SetZoom(zoom float64) {
	c.viewportOp(func(s *viewport.State) { s.SetZoom(zoom) })
}

// RotateCW rotates the viewport a quarter turn clockwise.
func (c *Controller) RotateCW() { c.viewportOp((*viewport.State).RotateCW) }

// RotateCCW rotates the viewport a quarter turn counter-clockwise.
func (c *Controller) RotateCCW() { c.viewportOp((*viewport.State).RotateCCW) }

// ActualSize restores 1:1 zoom and centers the content.
func (c *Controller) ActualSize() {
	c.viewportOp(func(s *viewport.State) {
		s.Reset()
	})
}

// FitToView chooses the zoom that fits the content into the viewport,
// with a small margin, and recenters.
func (c *Controller) FitToView(viewRect geometry.Rect) {
	c.mu.Lock()
	w, h := c.contentSize.Width, c.contentSize.Height
	if c.vp.Rotation() == viewport.Rotate90 || c.vp.Rotation() == viewport.Rotate270 {
		w, h = h, w
	}
	if w > 0 && h > 0 && viewRect.Width > 0 && viewRect.Height > 0 {
		zoomX := viewRect.Width / w
		zoomY := viewRect.Height / h
		zoom := zoomX
		if zoomY < zoomX {
			zoom = zoomY
		}
		c.vp.SetZoom(zoom * 0.95)
		c.vp.ResetPan()
	}
	c.mu.Unlock()

	c.emit([]event{{EventViewportChanged, nil}})
}

// --- interaction modes ---

// Mode returns the current interaction mode.
func (c *Controller) Mode() viewport.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.modes.Mode()
}

func (c *Controller) modeOp(fn func(m *viewport.ModeController)) {
	c.mu.Lock()
	fn(c.modes)
	c.mu.Unlock()

	c.emit([]event{{EventModeChanged, nil}})
}

// EnterPlacing toggles into the add-annotation mode.
func (c *Controller) EnterPlacing() {
	c.modeOp((*viewport.ModeController).EnterPlacing)
}

// EnterRepositioning toggles into the repositioning mode for one
// annotation.
func (c *Controller) EnterRepositioning(annotationID string) {
	c.modeOp(func(m *viewport.ModeController) { m.EnterRepositioning(annotationID) })
}

// TogglePanning flips the sticky pan mode.
func (c *Controller) TogglePanning() {
	c.modeOp((*viewport.ModeController).TogglePanning)
}

// CancelMode returns to the idle mode.
func (c *Controller) CancelMode() {
	c.modeOp((*viewport.ModeController).Cancel)
}

// --- pointer events ---

// PointerDown routes a pointer-down from the render surface. hitID is
// the annotation marker found under the pointer, or "".
func (c *Controller) PointerDown(screen geometry.Point2D, viewRect geometry.Rect, hitID string) {
	c.mu.Lock()
	params := c.vp.Params(viewRect, c.contentSize)
	intent := c.modes.PointerDown(screen, params, hitID)
	events := c.applyIntentLocked(intent)
	events = append(events, event{EventModeChanged, nil})
	c.mu.Unlock()

	c.emit(events)
}

// PointerMove routes a pointer-move; only pan drags produce effects.
func (c *Controller) PointerMove(screen geometry.Point2D) {
	c.mu.Lock()
	intent := c.modes.PointerMove(screen)
	events := c.applyIntentLocked(intent)
	c.mu.Unlock()

	c.emit(events)
}

// PointerUp ends an active drag.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	c.modes.PointerUp()
	c.mu.Unlock()
}

// PointerLeave cancels an active drag.
func (c *Controller) PointerLeave() {
	c.mu.Lock()
	c.modes.PointerLeave()
	c.mu.Unlock()
}

// applyIntentLocked applies a mode-controller intent to the stores.
// Caller holds mu.
func (c *Controller) applyIntentLocked(intent viewport.Intent) []event {
	switch intent.Kind {
	case viewport.IntentPlace:
		if c.registry.ActiveID() == "" {
			return nil
		}
		created := c.store.Create(intent.At)
		c.selected = created
		logger.Debug("placed annotation %s at (%.3f, %.3f)", created.ID, intent.At.X, intent.At.Y)
		return append([]event{
			{EventAnnotationsChanged, nil},
			{EventSelectionChanged, nil},
		}, c.syncAndSaveLocked()...)

	case viewport.IntentMove:
		fresh := c.store.Reposition(intent.AnnotationID, intent.At)
		if fresh == nil {
			return nil
		}
		c.resyncSelectionLocked(fresh)
		return append([]event{
			{EventAnnotationsChanged, nil},
			{EventSelectionChanged, nil},
		}, c.syncAndSaveLocked()...)

	case viewport.IntentPan:
		c.vp.PanBy(intent.Delta)
		return []event{{EventViewportChanged, nil}}

	case viewport.IntentSelect:
		c.selected = c.store.Get(intent.AnnotationID)
		return []event{{EventSelectionChanged, nil}}

	default:
		return nil
	}
}
