package ribbon

import "fmt"

// fakeHost measures groups from a fixed width table and lets tests decide
// which tab containers exist.
type fakeHost struct {
	r *Ribbon

	commandBar int
	tabBar     int
	headerW    int // width of one tab header

	widths     map[*Group][3]int // per SizeMode
	remeasured []*Group

	containers map[*Tab]*fakeContainer
	unrealized map[*Tab]bool
	queue      []func()

	onRemeasure func(Node)
}

type fakeContainer struct {
	selected bool
}

func (c *fakeContainer) SetSelected(v bool) { c.selected = v }

func newFakeHost(r *Ribbon) *fakeHost {
	return &fakeHost{
		r:          r,
		commandBar: 1000,
		tabBar:     1000,
		headerW:    10,
		widths:     map[*Group][3]int{},
		containers: map[*Tab]*fakeContainer{},
		unrealized: map[*Tab]bool{},
	}
}

func (h *fakeHost) groupWidth(g *Group) int {
	w, ok := h.widths[g]
	if !ok {
		w = [3]int{150, 80, 30}
	}
	return w[g.SizeMode()]
}

func (h *fakeHost) contentWidth(t *Tab) int {
	if t == nil {
		return 0
	}
	total := 0
	for _, g := range t.groups {
		total += h.groupWidth(g)
	}
	return total
}

func (h *fakeHost) RenderedWidth(n Node) int {
	switch n := n.(type) {
	case *Group:
		return h.groupWidth(n)
	case Bar:
		if n == TabBar {
			return h.tabBar
		}
		return h.commandBar
	case Viewport:
		return h.RenderedWidth(Bar(n))
	case Content:
		if Bar(n) == TabBar {
			visible := 0
			for _, t := range h.r.tabs {
				if t.IsVisible() {
					visible++
				}
			}
			return visible * h.headerW
		}
		return h.contentWidth(h.r.SelectedTab())
	}
	panic(fmt.Sprintf("unexpected node %T", n))
}

func (h *fakeHost) ForceRemeasure(n Node) {
	if g, ok := n.(*Group); ok {
		h.remeasured = append(h.remeasured, g)
	}
	if h.onRemeasure != nil {
		h.onRemeasure(n)
	}
}

func (h *fakeHost) TryGetContainer(t *Tab) (Container, bool) {
	if h.unrealized[t] {
		return nil, false
	}
	c, ok := h.containers[t]
	if !ok {
		c = &fakeContainer{}
		h.containers[t] = c
	}
	return c, true
}

func (h *fakeHost) Post(fn func()) { h.queue = append(h.queue, fn) }

// flush runs everything posted so far, including what the posted funcs post.
func (h *fakeHost) flush() {
	for len(h.queue) > 0 {
		fn := h.queue[0]
		h.queue = h.queue[1:]
		fn()
	}
}

// newTestRibbon builds a rendered ribbon with one single-group tab per title.
func newTestRibbon(titles ...string) (*Ribbon, *fakeHost) {
	r := New()
	for _, title := range titles {
		r.AddTab(NewTab(title, NewGroup(title+" group", 0, NewItem("a", 'a'), NewItem("b", 'b'))))
	}
	h := newFakeHost(r)
	r.Bind(h)
	r.LayoutUpdated()
	return r, h
}

func titles(tabs []*Tab) []string {
	var s []string
	for _, t := range tabs {
		s = append(s, t.Title)
	}
	return s
}
