package ribbon

type ScrollDirection int

const (
	ScrollLeft ScrollDirection = iota
	ScrollRight
	ScrollHome
	ScrollEnd
)

// ScrollMargin keeps scroll buttons from flickering when the content is
// within a cell of the bar width.
const ScrollMargin = 1

// ScrollController decides whether a bar shows scroll buttons and keeps its
// horizontal offset. The zero value is not usable, see NewScrollController.
type ScrollController struct {
	Bar Bar

	// VisibleChanged fires with the new value whenever the buttons
	// appear or disappear.
	VisibleChanged Event[bool]

	visible    bool
	offset     int
	scrollable int
	viewport   int
}

func NewScrollController(bar Bar) *ScrollController {
	return &ScrollController{Bar: bar}
}

func (s *ScrollController) ButtonsVisible() bool { return s.visible }
func (s *ScrollController) Offset() int          { return s.offset }

// ScrollableWidth is how far the content can be scrolled.
func (s *ScrollController) ScrollableWidth() int { return s.scrollable }

// UpdateVisibility re-evaluates the scroll buttons for the given widths
// and reports whether they are visible.
func (s *ScrollController) UpdateVisibility(content, viewport, bar int) bool {
	visible := content > viewport && content >= bar+ScrollMargin
	s.viewport = viewport
	s.scrollable = max(content-viewport, 0)
	if !visible {
		s.scrollable = 0
	}
	s.offset = min(s.offset, s.scrollable)
	if visible != s.visible {
		s.visible = visible
		s.VisibleChanged.emit(visible)
	}
	return visible
}

// ScrollBy moves the offset and returns the new one, clamped to
// [0, ScrollableWidth].
func (s *ScrollController) ScrollBy(dir ScrollDirection, amount int) int {
	switch dir {
	case ScrollLeft:
		s.offset -= amount
	case ScrollRight:
		s.offset += amount
	case ScrollHome:
		s.offset = 0
	case ScrollEnd:
		s.offset = s.scrollable
	}
	s.offset = min(max(s.offset, 0), s.scrollable)
	return s.offset
}

// Reveal scrolls as little as possible so that the content span [start, end)
// is inside the viewport. Spans wider than the viewport are aligned left.
func (s *ScrollController) Reveal(start, end int) int {
	switch {
	case start < s.offset:
		s.offset = start
	case end > s.offset+s.viewport:
		s.offset = min(end-s.viewport, start)
	}
	s.offset = min(max(s.offset, 0), s.scrollable)
	return s.offset
}
