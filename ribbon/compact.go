package ribbon

import (
	"cmp"
	"io"
	"slices"

	"github.com/charmbracelet/log"
)

// Compactor shrinks or grows the groups of a tab, one group at a time,
// until their rendered width fits the command bar.
type Compactor struct {
	m    Measurer
	log  *log.Logger
	busy bool
}

func NewCompactor(m Measurer, logger *log.Logger) *Compactor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Compactor{m: m, log: logger}
}

// Reflow changes group size modes until content fits into available.
// If content is too wide, groups are compacted in descending CompactOrder;
// if there is slack, they are restored in the reverse order for as long as
// the result still fits. After every change the group is re-measured and the
// content width of the command bar read again.
//
// Reflow returns the number of mode changes that were kept. It does nothing
// for tabs that do not fit to width, tabs without groups, or while another
// Reflow is running: re-measuring raises size notifications of its own.
func (c *Compactor) Reflow(available, content int, tab *Tab) int {
	if c.busy || tab == nil || !tab.FitToWidth || len(tab.groups) == 0 {
		return 0
	}
	c.busy = true
	defer func() { c.busy = false }()

	switch {
	case available < content:
		return c.shrink(available, content, tab)
	case available > content:
		return c.grow(available, tab)
	}
	return 0
}

// Busy reports whether a Reflow is in progress.
func (c *Compactor) Busy() bool { return c.busy }

// compactionOrder lists groups in the order they are compacted.
// Ties keep the order of the tab.
func compactionOrder(groups []*Group) []*Group {
	order := slices.Clone(groups)
	slices.SortStableFunc(order, func(a, b *Group) int {
		return cmp.Compare(b.CompactOrder, a.CompactOrder)
	})
	return order
}

func (c *Compactor) shrink(available, content int, tab *Tab) int {
	order := compactionOrder(tab.groups)
	changed := 0
	for _, target := range []SizeMode{Compact, IconOnly} {
		for _, g := range order {
			if g.mode >= target || (target == IconOnly && !g.CanIconify()) {
				continue
			}
			content = c.apply(g, target)
			changed++
			if content <= available {
				return changed
			}
		}
	}
	c.log.Debug("groups overflow the command bar", "tab", tab.Title, "content", content, "available", available)
	return changed
}

func (c *Compactor) grow(available int, tab *Tab) int {
	order := compactionOrder(tab.groups)
	slices.Reverse(order)
	changed := 0
	for _, step := range []struct{ from, to SizeMode }{
		{IconOnly, Compact},
		{Compact, Standard},
	} {
		for _, g := range order {
			if g.mode != step.from {
				continue
			}
			if content := c.apply(g, step.to); content > available {
				c.apply(g, step.from)
				return changed
			}
			changed++
		}
	}
	return changed
}

// apply sets the mode of g, forces a re-measure and returns the new content
// width of the command bar.
func (c *Compactor) apply(g *Group, m SizeMode) int {
	old := g.mode
	g.SetSizeMode(m)
	c.m.ForceRemeasure(g)
	w := c.m.RenderedWidth(Content(CommandBar))
	c.log.Debug("group resized", "group", g.Title, "from", old, "to", g.mode, "content", w)
	return w
}
