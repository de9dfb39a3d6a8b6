package viewport

import (
	"plan-annotator/pkg/geometry"
)

// Mode is the current pointer interaction mode. A single value holds the
// mode, so mutual exclusivity between placing, repositioning, and panning
// is structural rather than convention across separate flags.
type Mode int

const (
	ModeIdle Mode = iota
	ModePlacing
	ModeRepositioning
	ModePanning
)

func (m Mode) String() string {
	switch m {
	case ModePlacing:
		return "placing"
	case ModeRepositioning:
		return "repositioning"
	case ModePanning:
		return "panning"
	default:
		return "idle"
	}
}

// IntentKind identifies the instruction a pointer event resolved to.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentPlace
	IntentMove
	IntentPan
	IntentSelect
)

// Intent is an abstract instruction produced by the mode controller,
// decoupled from the pointer event that triggered it. The composition
// root applies it to the stores.
type Intent struct {
	Kind         IntentKind
	AnnotationID string           // IntentMove, IntentSelect
	At           geometry.Point2D // IntentPlace, IntentMove: normalized document point
	Delta        geometry.Point2D // IntentPan: screen-space delta
}

// ModeController is the finite-state machine over interaction modes. It
// consumes pointer events and, combined with the viewport transform,
// emits intents.
//
// Panning is a sticky toggle: pointer-up ends the drag but not the mode.
type ModeController struct {
	mode         Mode
	repositionID string

	dragging bool
	lastDrag geometry.Point2D
}

// NewModeController creates a controller in the idle mode.
func NewModeController() *ModeController {
	return &ModeController{}
}

// Mode returns the current mode.
func (c *ModeController) Mode() Mode {
	return c.mode
}

// RepositionTarget returns the annotation id being repositioned, or ""
// outside the repositioning mode.
func (c *ModeController) RepositionTarget() string {
	if c.mode != ModeRepositioning {
		return ""
	}
	return c.repositionID
}

// EnterPlacing switches to the add-annotation mode. Any other mode is
// implicitly exited.
func (c *ModeController) EnterPlacing() {
	c.set(ModePlacing, "")
}

// EnterRepositioning switches to the repositioning mode for one
// annotation.
func (c *ModeController) EnterRepositioning(annotationID string) {
	c.set(ModeRepositioning, annotationID)
}

// TogglePanning flips the sticky pan mode on or off.
func (c *ModeController) TogglePanning() {
	if c.mode == ModePanning {
		c.set(ModeIdle, "")
		return
	}
	c.set(ModePanning, "")
}

// Cancel returns to the idle mode without emitting anything.
func (c *ModeController) Cancel() {
	c.set(ModeIdle, "")
}

func (c *ModeController) set(m Mode, repositionID string) {
	c.mode = m
	c.repositionID = repositionID
	c.dragging = false
}

// PointerDown interprets a pointer-down at a viewport-local screen
// position. hitID is the annotation whose projected marker the render
// surface found under the pointer, or "".
//
// Placing and repositioning both consume exactly one pointer-down and
// return to idle, whether or not the click was usable: a point mapping
// outside the unit square is swallowed rather than creating or moving an
// annotation off the document. With no content extent the inverse
// transform degenerates to the origin, which would pass the unit-square
// check; those clicks are swallowed too.
func (c *ModeController) PointerDown(screen geometry.Point2D, params Params, hitID string) Intent {
	switch c.mode {
	case ModePlacing:
		c.set(ModeIdle, "")
		if params.ContentSize.IsEmpty() {
			return Intent{}
		}
		p := ScreenToDocument(screen, params)
		if !p.InUnit() {
			return Intent{}
		}
		return Intent{Kind: IntentPlace, At: p}

	case ModeRepositioning:
		id := c.repositionID
		c.set(ModeIdle, "")
		if params.ContentSize.IsEmpty() {
			return Intent{}
		}
		p := ScreenToDocument(screen, params)
		if !p.InUnit() {
			return Intent{}
		}
		return Intent{Kind: IntentMove, AnnotationID: id, At: p}

	case ModePanning:
		c.dragging = true
		c.lastDrag = screen
		return Intent{}

	default:
		if hitID != "" {
			return Intent{Kind: IntentSelect, AnnotationID: hitID}
		}
		return Intent{}
	}
}

// PointerMove interprets a pointer-move. During an active pan drag each
// event recomputes its delta from the previous position, so move events
// arriving at device frame rate stay idempotent instead of accumulating.
func (c *ModeController) PointerMove(screen geometry.Point2D) Intent {
	if c.mode != ModePanning || !c.dragging {
		return Intent{}
	}
	delta := screen.Sub(c.lastDrag)
	c.lastDrag = screen
	return Intent{Kind: IntentPan, Delta: delta}
}

// PointerUp ends an active drag. In pan mode the mode itself persists.
func (c *ModeController) PointerUp() {
	c.dragging = false
}

// PointerLeave cancels an active drag when the pointer leaves the
// viewport.
func (c *ModeController) PointerLeave() {
	c.dragging = false
}
