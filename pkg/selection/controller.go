package selection

import (
	"github.com/matst80/slask-catalog/pkg/types"
)

// State is either Closed or Editing.
type State interface {
	isState()
}

type Closed struct{}

// Editing carries the draft being edited in the filter editor.
type Editing struct {
	Draft types.FilterCriteria
}

func (Closed) isState()   {}
func (*Editing) isState() {}

// Controller implements the two phase filter editing protocol. Applied
// criteria only change through Commit, ClearAll or Remove.
type Controller struct {
	applied types.FilterCriteria
	state   State
}

func NewController() *Controller {
	return &Controller{
		applied: types.DefaultCriteria(),
		state:   Closed{},
	}
}

func (c *Controller) Applied() types.FilterCriteria {
	return c.applied
}

func (c *Controller) State() State {
	return c.state
}

// Draft returns the draft while editing.
func (c *Controller) Draft() (types.FilterCriteria, bool) {
	if e, ok := c.state.(*Editing); ok {
		return e.Draft, true
	}
	return types.FilterCriteria{}, false
}

func (c *Controller) IsEditing() bool {
	_, ok := c.state.(*Editing)
	return ok
}

// Open seeds a fresh draft from the applied criteria, discarding any draft
// that was already open.
func (c *Controller) Open() {
	c.state = &Editing{Draft: c.applied}
}

func (c *Controller) editDraft(fn func(d *types.FilterCriteria)) bool {
	e, ok := c.state.(*Editing)
	if !ok {
		return false
	}
	before := e.Draft
	fn(&e.Draft)
	return before != e.Draft
}

func (c *Controller) SetDraftCategory(category string) bool {
	return c.editDraft(func(d *types.FilterCriteria) {
		d.Category = category
	})
}

func (c *Controller) SetDraftPriceRange(r types.PriceRange) bool {
	return c.editDraft(func(d *types.FilterCriteria) {
		d.PriceRange = r
	})
}

func (c *Controller) SetDraftRating(r types.MinRating) bool {
	return c.editDraft(func(d *types.FilterCriteria) {
		d.MinRating = r
	})
}

// Commit applies the draft and closes the editor. It reports false when
// there was no open editor.
func (c *Controller) Commit() bool {
	e, ok := c.state.(*Editing)
	if !ok {
		return false
	}
	c.applied = e.Draft
	c.state = Closed{}
	return true
}

func (c *Controller) Cancel() bool {
	if !c.IsEditing() {
		return false
	}
	c.state = Closed{}
	return true
}

// ClearAll resets applied and any draft to the defaults and closes the
// editor whatever the current state.
func (c *Controller) ClearAll() {
	c.applied = types.DefaultCriteria()
	c.state = Closed{}
}

// Remove resets one applied field without going through the draft. An open
// editor keeps its draft.
func (c *Controller) Remove(field types.Field) bool {
	next := c.applied.Without(field)
	if next == c.applied {
		return false
	}
	c.applied = next
	return true
}
