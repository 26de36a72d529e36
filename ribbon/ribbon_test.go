package ribbon

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func assertAgreement(t *testing.T, r *Ribbon) {
	t.Helper()
	sel, idx := r.SelectedTab(), r.SelectedIndex()
	if sel == nil && idx != -1 {
		t.Fatalf("no tab selected but SelectedIndex() = %d", idx)
	}
	if sel != nil && r.IndexOf(sel) != idx {
		t.Fatalf("SelectedIndex() = %d, but %q is at %d", idx, sel.Title, r.IndexOf(sel))
	}
}

func TestRibbon_InitialSelection(t *testing.T) {
	r := New()
	a, b := NewTab("A"), NewTab("B")
	r.AddTab(a)
	r.AddTab(b)
	a.SetVisible(false)

	h := newFakeHost(r)
	r.Bind(h)
	if r.SelectedTab() != nil {
		t.Fatal("tab selected before the first layout pass")
	}
	r.LayoutUpdated()

	if r.SelectedTab() != b || r.SelectedIndex() != 1 {
		t.Errorf("selected %v at %d, want B at 1", r.SelectedTab(), r.SelectedIndex())
	}
	if !h.containers[b].selected {
		t.Error("container of B not marked selected")
	}
}

func TestRibbon_SelectionSurvivesStaleRequests(t *testing.T) {
	tests := []struct {
		name string
		// run leaves the ribbon after its last layout pass
		run  func(r *Ribbon, h *fakeHost)
		want string
	}{
		{
			name: "collapse while first visible tab is unrealized",
			run: func(r *Ribbon, h *fakeHost) {
				r.Bind(h)
				r.LayoutUpdated()
				r.SelectTab(r.Tab(1))

				x := NewTab("X")
				h.unrealized[x] = true
				r.InsertTab(0, x)
				r.Tab(2).SetVisible(false)
				h.flush()
				if r.SelectedTab() != nil {
					t.Fatalf("selected %v before X is realized", r.SelectedTab())
				}

				delete(h.unrealized, x)
				r.LayoutUpdated()
				h.flush()
			},
			want: "X",
		},
		{
			name: "pending tab collapsed before first render",
			run: func(r *Ribbon, h *fakeHost) {
				b := r.Tab(1)
				r.SelectTab(b)
				r.Bind(h)
				b.SetVisible(false)
				r.LayoutUpdated()
				h.flush()
			},
			want: "A",
		},
		{
			name: "pending tab removed before first render",
			run: func(r *Ribbon, h *fakeHost) {
				b := r.Tab(1)
				r.SelectTab(b)
				r.Bind(h)
				r.RemoveTab(b)
				r.LayoutUpdated()
				h.flush()
			},
			want: "A",
		},
		{
			name: "pending tab realized on first render",
			run: func(r *Ribbon, h *fakeHost) {
				r.SelectTab(r.Tab(1))
				r.Bind(h)
				r.LayoutUpdated()
			},
			want: "B",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			r.AddTab(NewTab("A"))
			r.AddTab(NewTab("B"))
			h := newFakeHost(r)

			tt.run(r, h)
			if got := r.SelectedTab(); got == nil || got.Title != tt.want {
				t.Errorf("SelectedTab() = %v, want %s", got, tt.want)
			}
			if c := h.containers[r.SelectedTab()]; c == nil || !c.selected {
				t.Error("container of the selected tab not marked selected")
			}
			assertAgreement(t, r)
		})
	}
}

func TestRibbon_RebindSelectsWhenNothingSelected(t *testing.T) {
	r, _ := newTestRibbon("A", "B")
	r.SetSelectedIndex(-1)

	h := newFakeHost(r)
	r.Bind(h)
	r.LayoutUpdated()
	if r.SelectedIndex() != 0 {
		t.Errorf("SelectedIndex() = %d after rebind, want 0", r.SelectedIndex())
	}

	// a rebind keeps an existing selection and marks the new container
	r.SetSelectedIndex(1)
	h2 := newFakeHost(r)
	r.Bind(h2)
	r.LayoutUpdated()
	if r.SelectedIndex() != 1 || !h2.containers[r.Tab(1)].selected {
		t.Errorf("selection after second rebind = %d, want 1 with its container selected", r.SelectedIndex())
	}
}

func TestRibbon_SelectTab(t *testing.T) {
	r, h := newTestRibbon("A", "B", "C")
	a, b, c := r.Tab(0), r.Tab(1), r.Tab(2)
	c.SetVisible(false)
	stranger := NewTab("X")

	tests := []struct {
		name    string
		tab     *Tab
		wantOK  bool
		wantSel *Tab
	}{
		{"visible member", b, true, b},
		{"collapsed member", c, false, b},
		{"not a member", stranger, false, b},
		{"nil", nil, false, b},
		{"back to first", a, true, a},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.SelectTab(tt.tab); got != tt.wantOK {
				t.Errorf("SelectTab() = %v, want %v", got, tt.wantOK)
			}
			if r.SelectedTab() != tt.wantSel {
				t.Errorf("selected %v, want %v", r.SelectedTab(), tt.wantSel)
			}
			assertAgreement(t, r)
		})
	}

	if h.containers[b].selected {
		t.Error("container of B still selected after selecting A")
	}
	if !h.containers[a].selected {
		t.Error("container of A not selected")
	}
}

func TestRibbon_SetSelectedIndex(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		wantOK    bool
		wantIndex int
	}{
		{"valid", 1, true, 1},
		{"none", -1, true, -1},
		{"past end", 3, false, -1},
		{"negative", -2, false, -1},
		{"collapsed", 2, false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRibbon("A", "B", "C")
			r.Tab(2).SetVisible(false)

			if got := r.SetSelectedIndex(tt.index); got != tt.wantOK {
				t.Errorf("SetSelectedIndex(%d) = %v, want %v", tt.index, got, tt.wantOK)
			}
			if r.SelectedIndex() != tt.wantIndex {
				t.Errorf("SelectedIndex() = %d, want %d", r.SelectedIndex(), tt.wantIndex)
			}
			assertAgreement(t, r)
		})
	}
}

func TestRibbon_UnrealizedContainer(t *testing.T) {
	r, h := newTestRibbon("A", "B")
	b := r.Tab(1)
	h.unrealized[b] = true

	if r.SelectTab(b) {
		t.Fatal("SelectTab() succeeded without a container")
	}
	if r.SelectedIndex() != 0 {
		t.Fatalf("SelectedIndex() = %d, want unchanged 0", r.SelectedIndex())
	}

	// still not realized after this layout pass
	r.LayoutUpdated()
	if r.SelectedIndex() != 0 {
		t.Fatalf("SelectedIndex() = %d, want 0", r.SelectedIndex())
	}

	delete(h.unrealized, b)
	r.LayoutUpdated()
	if r.SelectedTab() != b {
		t.Errorf("selected %v after retry, want B", r.SelectedTab())
	}
}

func TestRibbon_AutoReselectOnCollapse(t *testing.T) {
	r, h := newTestRibbon("A", "B", "C")
	r.SelectTab(r.Tab(1))

	r.Tab(1).SetVisible(false)
	if r.SelectedIndex() != 1 {
		t.Fatalf("reselection ran inline, SelectedIndex() = %d", r.SelectedIndex())
	}
	h.flush()

	if r.SelectedTab() != r.Tab(0) {
		t.Errorf("selected %v, want A", r.SelectedTab())
	}
	assertAgreement(t, r)
}

func TestRibbon_AutoReselectNoneVisible(t *testing.T) {
	r, h := newTestRibbon("A", "B")
	r.Tab(1).SetVisible(false)
	r.Tab(0).SetVisible(false)
	h.flush()

	if r.SelectedTab() != nil || r.SelectedIndex() != -1 {
		t.Errorf("selected %v at %d, want nothing", r.SelectedTab(), r.SelectedIndex())
	}

	// showing a tab again brings the selection back
	r.Tab(1).SetVisible(true)
	h.flush()
	if r.SelectedIndex() != 1 {
		t.Errorf("SelectedIndex() = %d after showing B, want 1", r.SelectedIndex())
	}
}

func TestRibbon_ReentrantSelectionDropped(t *testing.T) {
	r, _ := newTestRibbon("A", "B", "C")
	var nested []bool
	r.SelectedTabChanged.Subscribe(func(SelectionChange) {
		nested = append(nested, r.SetSelectedIndex(2), r.SelectTab(r.Tab(0)))
	})

	if !r.SelectTab(r.Tab(1)) {
		t.Fatal("SelectTab(B) failed")
	}
	if r.SelectedIndex() != 1 {
		t.Errorf("SelectedIndex() = %d, want 1", r.SelectedIndex())
	}
	if !slices.Equal(nested, []bool{false, false}) {
		t.Errorf("nested selections = %v, want both dropped", nested)
	}
}

func TestRibbon_SelectedTabChanged(t *testing.T) {
	r, _ := newTestRibbon("A", "B")
	var got []SelectionChange
	r.SelectedTabChanged.Subscribe(func(c SelectionChange) { got = append(got, c) })

	r.SelectTab(r.Tab(1))
	r.SelectTab(r.Tab(1)) // no change, no event
	r.SetSelectedIndex(-1)

	want := []SelectionChange{
		{Old: r.Tab(0), New: r.Tab(1), Index: 1},
		{Old: r.Tab(1), New: nil, Index: -1},
	}
	if !slices.Equal(got, want) {
		t.Errorf("events = %+v, want %+v", got, want)
	}
}

func TestRibbon_RemoveSelectedTab(t *testing.T) {
	r, h := newTestRibbon("A", "B", "C")
	b := r.Tab(1)
	r.SelectTab(b)

	r.RemoveTab(b)
	assertAgreement(t, r)
	if r.SelectedTab() != nil {
		t.Fatalf("removed tab still selected")
	}
	if h.containers[b].selected {
		t.Error("container of removed tab still selected")
	}
	h.flush()
	if r.SelectedTab() != r.Tab(0) {
		t.Errorf("selected %v after removal, want A", r.SelectedTab())
	}
}

func TestRibbon_InsertKeepsIndexInSync(t *testing.T) {
	r, _ := newTestRibbon("A", "B")
	r.SelectTab(r.Tab(1))

	r.InsertTab(0, NewTab("Z"))
	if r.SelectedIndex() != 2 {
		t.Errorf("SelectedIndex() = %d after insert, want 2", r.SelectedIndex())
	}
	if r.InsertTab(0, r.Tab(1)) {
		t.Error("InsertTab() accepted a tab that is already a member")
	}
	assertAgreement(t, r)
}

func TestRibbon_Clear(t *testing.T) {
	r, _ := newTestRibbon("A", "B")
	tabs := r.Tabs()
	cleared := 0
	r.TabsCleared.Subscribe(func(struct{}) { cleared++ })

	r.Clear()

	if cleared != 1 {
		t.Errorf("TabsCleared fired %d times, want 1", cleared)
	}
	if r.Len() != 0 || r.SelectedIndex() != -1 || r.SelectedTab() != nil {
		t.Errorf("after Clear: len %d, index %d, tab %v", r.Len(), r.SelectedIndex(), r.SelectedTab())
	}
	if tabs[0].Ribbon() != nil {
		t.Error("cleared tab still points at the ribbon")
	}
	// cleared tabs can be added again
	if !r.AddTab(tabs[0]) {
		t.Error("AddTab() refused a cleared tab")
	}
}

func TestRibbon_TabByID(t *testing.T) {
	r, _ := newTestRibbon("A", "B")
	b := r.Tab(1)
	if got := r.TabByID(b.ID); got != b {
		t.Errorf("TabByID() = %v, want B", got)
	}
	if got := r.TabByID("missing"); got != nil {
		t.Errorf("TabByID(missing) = %v, want nil", got)
	}
}

func TestRibbon_SelectionAgreement(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	r, h := newTestRibbon("A", "B", "C", "D", "E")

	for step := range 500 {
		n := r.Len()
		switch rng.IntN(7) {
		case 0:
			r.SetSelectedIndex(rng.IntN(n+3) - 2)
		case 1:
			if n > 0 {
				r.SelectTab(r.Tab(rng.IntN(n)))
			}
		case 2:
			if n > 0 {
				r.Tab(rng.IntN(n)).SetVisible(rng.IntN(2) == 0)
			}
		case 3:
			if n > 1 {
				r.HandleDrop(r.Tab(rng.IntN(n)), r.Tab(rng.IntN(n)), rng.IntN(2) == 0)
			}
		case 4:
			if n > 2 {
				r.RemoveTab(r.Tab(rng.IntN(n)))
			} else {
				r.AddTab(NewTab("new"))
			}
		case 5:
			h.flush()
		case 6:
			if n > 0 {
				h.unrealized[r.Tab(rng.IntN(n))] = rng.IntN(3) == 0
			}
			r.LayoutUpdated()
		}
		if t.Failed() {
			t.Fatalf("failed at step %d", step)
		}
		assertAgreement(t, r)
		if s := r.SelectedTab(); s != nil && !s.IsVisible() && len(h.queue) == 0 {
			t.Fatalf("step %d: collapsed tab %q selected with no reselection queued", step, s.Title)
		}
	}
}

func TestRibbon_HandleDrop(t *testing.T) {
	tests := []struct {
		name        string
		dropped     int
		target      int
		placeBefore bool
		wantOK      bool
		want        []string
	}{
		{"before first", 2, 0, true, true, []string{"C", "A", "B", "D"}},
		{"after last", 0, 3, false, true, []string{"B", "C", "D", "A"}},
		{"after next", 1, 2, false, true, []string{"A", "C", "B", "D"}},
		{"before previous", 2, 1, true, true, []string{"A", "C", "B", "D"}},
		{"before next is a no-op move", 1, 2, true, true, []string{"A", "B", "C", "D"}},
		{"onto itself", 1, 1, true, false, []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRibbon("A", "B", "C", "D")
			if got := r.HandleDrop(r.Tab(tt.dropped), r.Tab(tt.target), tt.placeBefore); got != tt.wantOK {
				t.Errorf("HandleDrop() = %v, want %v", got, tt.wantOK)
			}
			if got := titles(r.Tabs()); !slices.Equal(got, tt.want) {
				t.Errorf("tabs = %v, want %v", got, tt.want)
			}
			assertAgreement(t, r)
		})
	}
}

func TestRibbon_HandleDropPreservesSelection(t *testing.T) {
	r, _ := newTestRibbon("A", "B", "C", "D")
	x := r.Tab(2)
	r.SelectTab(x)

	r.HandleDrop(x, r.Tab(0), true)

	if r.SelectedTab() != x || r.SelectedIndex() != 0 {
		t.Errorf("selected %v at %d, want C at 0", r.SelectedTab(), r.SelectedIndex())
	}

	// moving another tab past the selected one shifts the index
	r.HandleDrop(r.Tab(3), r.Tab(0), true)
	if r.SelectedTab() != x || r.SelectedIndex() != 1 {
		t.Errorf("selected %v at %d, want C at 1", r.SelectedTab(), r.SelectedIndex())
	}
}

func TestRibbon_HandleDropIgnoresStrangers(t *testing.T) {
	r, _ := newTestRibbon("A", "B")
	other, _ := newTestRibbon("X")

	if r.HandleDrop(other.Tab(0), r.Tab(0), true) {
		t.Error("HandleDrop() accepted a tab of another ribbon")
	}
	if r.HandleDrop(r.Tab(0), other.Tab(0), true) {
		t.Error("HandleDrop() accepted a target of another ribbon")
	}
	removed := r.Tab(1)
	r.RemoveTab(removed)
	if r.HandleDrop(removed, r.Tab(0), true) {
		t.Error("HandleDrop() accepted a removed tab")
	}
	if got := titles(r.Tabs()); !slices.Equal(got, []string{"A"}) {
		t.Errorf("tabs = %v, want [A]", got)
	}
}

func TestRibbon_GroupChangesReflow(t *testing.T) {
	r, h := newTestRibbon("A")
	tab := r.Tab(0)
	h.commandBar = 400

	// 150 + 150 + 150 does not fit, the new group has the highest order
	tab.AddGroup(NewGroup("wide", 0, NewItem("a", 'a'), NewItem("b", 'b')))
	g := NewGroup("wider", 5, NewItem("c", 'c'), NewItem("d", 'd'))
	tab.AddGroup(g)

	if g.SizeMode() != Compact {
		t.Errorf("SizeMode() = %v, want compact", g.SizeMode())
	}
	if got := h.contentWidth(tab); got > 400 {
		t.Errorf("content width = %d, want <= 400", got)
	}
	if !slices.Contains(h.remeasured, g) {
		t.Error("added group was not remeasured")
	}
}

func TestRibbon_ScrollVisibilityFollowsTabs(t *testing.T) {
	r, h := newTestRibbon("A", "B")
	h.tabBar = 25 // two headers of 10 fit

	var changes []bool
	r.TabScroll.VisibleChanged.Subscribe(func(v bool) { changes = append(changes, v) })

	r.AddTab(NewTab("C"))
	if !r.TabScroll.ButtonsVisible() {
		t.Error("tab scroll buttons hidden with 30 cells of headers in 25")
	}
	r.Tab(2).SetVisible(false)
	if r.TabScroll.ButtonsVisible() {
		t.Error("tab scroll buttons visible after collapsing a tab")
	}
	if !slices.Equal(changes, []bool{true, false}) {
		t.Errorf("VisibleChanged = %v, want [true false]", changes)
	}
}
