package ribbon

// Bar is one of the two horizontal strips of the ribbon.
// As a Node it stands for the full width of the bar.
type Bar int

const (
	TabBar Bar = iota
	CommandBar
)

func (b Bar) String() string {
	if b == TabBar {
		return "tabs"
	}
	return "commands"
}

// Viewport is the part of a bar that shows content, excluding scroll buttons.
type Viewport Bar

// Content is the natural width of everything a bar holds: all visible tab
// headers, or the groups of the selected tab at their current size modes.
type Content Bar

// Node is something the host can measure.
// It is one of *Group, Bar, Viewport or Content.
type Node interface {
	isNode()
}

func (*Group) isNode()   {}
func (Bar) isNode()      {}
func (Viewport) isNode() {}
func (Content) isNode()  {}

// Measurer reports rendered widths. Both calls are synchronous.
type Measurer interface {
	// RenderedWidth returns the width node occupies right now.
	RenderedWidth(node Node) int
	// ForceRemeasure re-resolves the size of node after one of its
	// properties changed. It is expensive and called once per change.
	ForceRemeasure(node Node)
}

// Container is the realized visual of a tab header.
type Container interface {
	SetSelected(selected bool)
}

// ContainerSource hands out tab containers. Containers are realized lazily
// by the host, so ok == false is an ordinary answer meaning "try again after
// the next layout pass".
type ContainerSource interface {
	TryGetContainer(t *Tab) (c Container, ok bool)
}

// Dispatcher runs fn on the UI goroutine once the event being handled is done.
type Dispatcher interface {
	Post(fn func())
}

// Host is what a Ribbon needs from the toolkit rendering it.
type Host interface {
	Measurer
	ContainerSource
	Dispatcher
}
