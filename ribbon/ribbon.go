// Package ribbon implements the engine of a ribbon toolbar: an ordered list
// of tabs holding command groups that compact themselves to fit the window,
// a selection state machine and scroll state for the tab and command bars.
//
// A Ribbon does not draw. The toolkit rendering it implements Host, calls
// Bind once its visual tree exists, LayoutUpdated after every layout pass
// and MeasureAndCompactGroups when the bar width changes. Everything runs on
// the toolkit's UI goroutine.
package ribbon

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"
)

// SelectionChange is the payload of Ribbon.SelectedTabChanged.
// New is nil and Index is -1 when nothing is selected anymore.
type SelectionChange struct {
	Old, New *Tab
	Index    int
}

type Option func(*Ribbon)

// WithLogger sets the logger used for layout and selection diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Ribbon) {
		if l != nil {
			r.log = l
		}
	}
}

// Ribbon owns the tab list and the selection.
type Ribbon struct {
	TabScroll     *ScrollController
	CommandScroll *ScrollController

	SelectedTabChanged Event[SelectionChange]
	TabsCleared        Event[struct{}]

	tabs     []*Tab
	selected *Tab
	index    int

	// switching is set while a selection transition runs. Selection
	// requests raised by its own side effects are dropped.
	switching bool
	pending   *Tab // waits for its container to be realized
	queued    bool // a reselection is posted
	rendered  bool

	host      Host
	compactor *Compactor
	log       *log.Logger
}

func New(opts ...Option) *Ribbon {
	r := &Ribbon{
		TabScroll:     NewScrollController(TabBar),
		CommandScroll: NewScrollController(CommandBar),
		index:         -1,
		log:           log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Bind attaches the ribbon to the host rendering it. The next LayoutUpdated
// counts as the first render: it selects the first visible tab if nothing
// is selected yet.
func (r *Ribbon) Bind(h Host) {
	r.host = h
	r.compactor = NewCompactor(h, r.log)
	r.rendered = false
}

func (r *Ribbon) Tabs() []*Tab       { return slices.Clone(r.tabs) }
func (r *Ribbon) Len() int           { return len(r.tabs) }
func (r *Ribbon) SelectedTab() *Tab  { return r.selected }
func (r *Ribbon) SelectedIndex() int { return r.index }
func (r *Ribbon) Rendered() bool     { return r.rendered }

func (r *Ribbon) Tab(i int) *Tab {
	if i < 0 || i >= len(r.tabs) {
		return nil
	}
	return r.tabs[i]
}

func (r *Ribbon) IndexOf(t *Tab) int {
	if t == nil {
		return -1
	}
	return slices.Index(r.tabs, t)
}

func (r *Ribbon) TabByID(id string) *Tab {
	for _, t := range r.tabs {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (r *Ribbon) AddTab(t *Tab) bool { return r.InsertTab(len(r.tabs), t) }

// InsertTab inserts t at position i (clamped). A tab already belonging to a
// ribbon, this one included, is refused.
func (r *Ribbon) InsertTab(i int, t *Tab) bool {
	if t == nil || t.ribbon != nil {
		return false
	}
	t.ribbon = r
	r.tabs = slices.Insert(r.tabs, min(max(i, 0), len(r.tabs)), t)
	r.tabsChanged()
	return true
}

func (r *Ribbon) RemoveTab(t *Tab) bool {
	i := r.IndexOf(t)
	if i < 0 {
		return false
	}
	if t == r.selected {
		r.deselectContainer(t)
	}
	r.tabs = slices.Delete(r.tabs, i, i+1)
	t.ribbon = nil
	if r.pending == t {
		r.pending = nil
	}
	r.tabsChanged()
	return true
}

// Clear removes all tabs and fires TabsCleared.
func (r *Ribbon) Clear() {
	old := r.selected
	if old != nil {
		r.deselectContainer(old)
	}
	for _, t := range r.tabs {
		t.ribbon = nil
	}
	r.tabs = nil
	r.selected, r.index, r.pending = nil, -1, nil
	if old != nil {
		r.SelectedTabChanged.emit(SelectionChange{Old: old, Index: -1})
	}
	r.TabsCleared.emit(struct{}{})
	r.UpdateScrollVisibility()
}

// tabsChanged resyncs the selected index after the tab list changed.
func (r *Ribbon) tabsChanged() {
	if old := r.selected; old != nil {
		if i := r.IndexOf(old); i >= 0 {
			r.index = i
		} else {
			r.selected, r.index = nil, -1
			r.SelectedTabChanged.emit(SelectionChange{Old: old, Index: -1})
		}
	}
	if r.selected == nil {
		r.reselectLater()
	}
	r.UpdateScrollVisibility()
}

func (r *Ribbon) tabVisibilityChanged(t *Tab) {
	r.log.Debug("tab visibility changed", "tab", t.Title, "visibility", t.visibility)
	if (t == r.selected && !t.IsVisible()) || (r.selected == nil && t.IsVisible()) {
		r.reselectLater()
	}
	r.UpdateScrollVisibility()
}

func (r *Ribbon) contentChanged(t *Tab, g *Group) {
	if r.host == nil {
		return
	}
	r.host.ForceRemeasure(g)
	if t == r.selected {
		r.MeasureAndCompactGroups()
	}
}

// reselectLater selects the first visible tab on the next idle tick, unless
// the selection has been fixed by then. Running it inline could mutate the
// tab list while the caller still iterates it.
func (r *Ribbon) reselectLater() {
	if r.host == nil || !r.rendered {
		if s := r.selected; s != nil && !s.IsVisible() {
			r.dropSelection()
		}
		return
	}
	if r.queued {
		return
	}
	r.queued = true
	r.host.Post(func() {
		r.queued = false
		if s := r.selected; s == nil || !s.IsVisible() {
			r.selectFirstVisible()
		}
	})
}

func (r *Ribbon) selectFirstVisible() bool {
	i := slices.IndexFunc(r.tabs, (*Tab).IsVisible)
	if i < 0 {
		r.deselect()
		return false
	}
	if r.SelectTab(r.tabs[i]) {
		return true
	}
	// an unrealized first tab stays pending for the next layout pass
	if s := r.selected; s != nil && !s.IsVisible() {
		r.dropSelection()
	}
	return false
}

// SelectTab makes t the selected tab. It fails, leaving the selection as it
// was, if t is not in the list, is collapsed, or has no realized container
// yet; in the last case the request is retried after the next layout pass.
// Requests made while another selection is being applied are dropped.
func (r *Ribbon) SelectTab(t *Tab) bool {
	if r.switching {
		r.log.Debug("selection dropped during transition")
		return false
	}
	i := r.IndexOf(t)
	if i < 0 || !t.IsVisible() {
		return false
	}
	if r.host == nil {
		r.pending = t
		return false
	}
	c, ok := r.host.TryGetContainer(t)
	if !ok {
		r.log.Debug("tab container not realized", "tab", t.Title)
		r.pending = t
		return false
	}
	r.pending = nil

	old := r.selected
	r.transition(func() {
		if old != nil && old != t {
			r.deselectContainer(old)
		}
		c.SetSelected(true)
		r.selected, r.index = t, i
		if old != t {
			r.CommandScroll.ScrollBy(ScrollHome, 0)
			r.SelectedTabChanged.emit(SelectionChange{Old: old, New: t, Index: i})
		}
	})
	r.MeasureAndCompactGroups()
	return true
}

// SetSelectedIndex selects the tab at i. -1 clears the selection, and so does
// an index out of range or pointing at a collapsed tab. It reports whether
// the requested state was reached.
func (r *Ribbon) SetSelectedIndex(i int) bool {
	if r.switching {
		return false
	}
	switch {
	case i == -1:
		r.deselect()
		return true
	case i < -1 || i >= len(r.tabs):
		r.SetSelectedIndex(-1)
		return false
	}
	t := r.tabs[i]
	if r.SelectTab(t) {
		return true
	}
	if !t.IsVisible() {
		r.deselect()
	}
	return false
}

func (r *Ribbon) deselect() {
	r.pending = nil
	r.dropSelection()
}

// dropSelection clears the selection but keeps a pending request.
func (r *Ribbon) dropSelection() {
	old := r.selected
	if old == nil {
		r.index = -1
		return
	}
	r.transition(func() {
		r.deselectContainer(old)
		r.selected, r.index = nil, -1
		r.SelectedTabChanged.emit(SelectionChange{Old: old, Index: -1})
	})
	r.UpdateScrollVisibility()
}

func (r *Ribbon) deselectContainer(t *Tab) {
	if r.host == nil {
		return
	}
	if c, ok := r.host.TryGetContainer(t); ok {
		c.SetSelected(false)
	}
}

func (r *Ribbon) transition(fn func()) {
	r.switching = true
	defer func() { r.switching = false }()
	fn()
}

// LayoutUpdated is called by the host after every layout pass. The first call
// after Bind makes the initial selection; later calls retry a selection that
// was waiting for its container. A retry that can no longer succeed because
// its tab was collapsed or removed falls back to the first visible tab when
// nothing else is selected.
func (r *Ribbon) LayoutUpdated() {
	if r.host == nil {
		return
	}
	if !r.rendered {
		r.rendered = true
		switch {
		case r.pending != nil:
		case r.selected != nil:
			// a new host needs to mark its own container
			r.pending = r.selected
		default:
			r.selectFirstVisible()
			return
		}
	}
	if p := r.pending; p != nil {
		r.pending = nil
		if !r.SelectTab(p) && r.pending == nil && r.selected == nil {
			r.selectFirstVisible()
		}
	}
}

// MeasureAndCompactGroups runs a Reflow for the selected tab against the
// current command bar width, then updates both scroll controllers. It is
// idempotent and returns the number of group mode changes.
func (r *Ribbon) MeasureAndCompactGroups() int {
	if r.host == nil || !r.rendered {
		return 0
	}
	n := 0
	if t := r.selected; t != nil {
		n = r.compactor.Reflow(
			r.host.RenderedWidth(CommandBar),
			r.host.RenderedWidth(Content(CommandBar)),
			t,
		)
	}
	r.UpdateScrollVisibility()
	return n
}

// UpdateScrollVisibility re-evaluates the scroll buttons of both bars.
func (r *Ribbon) UpdateScrollVisibility() {
	if r.host == nil || !r.rendered {
		return
	}
	for _, s := range []*ScrollController{r.TabScroll, r.CommandScroll} {
		s.UpdateVisibility(
			r.host.RenderedWidth(Content(s.Bar)),
			r.host.RenderedWidth(Viewport(s.Bar)),
			r.host.RenderedWidth(s.Bar),
		)
	}
}

// HandleDrop applies a completed drag of dropped onto target, placing it
// before or after target. The selection follows the dropped tab. Drops of a
// tab onto itself, or of tabs that are not (or no longer) in the list, are
// ignored.
func (r *Ribbon) HandleDrop(dropped, target *Tab, placeBefore bool) bool {
	if dropped == nil || dropped == target {
		return false
	}
	from := r.IndexOf(dropped)
	if from < 0 || r.IndexOf(target) < 0 {
		return false
	}
	wasSelected := dropped == r.selected

	r.tabs = slices.Delete(r.tabs, from, from+1)
	to := r.IndexOf(target)
	if !placeBefore {
		to++
	}
	r.tabs = slices.Insert(r.tabs, to, dropped)
	r.log.Debug("tab moved", "tab", dropped.Title, "from", from, "to", to)

	r.tabsChanged()
	if wasSelected {
		r.SelectTab(dropped)
	}
	return true
}
