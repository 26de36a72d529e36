package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/cansyan/ribbon/config"
	"github.com/cansyan/ribbon/ribbon"
)

func newTestDemo(t *testing.T, w, h int) (*demo, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(w, h)

	d, err := newDemo(s, config.Default(), log.New(io.Discard))
	if err != nil {
		t.Fatalf("newDemo() error = %v", err)
	}
	d.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	settle(d.app, s)
	return d, s
}

func (d *demo) press(k tcell.Key) {
	d.app.HandleEvent(tcell.NewEventKey(k, 0, tcell.ModCtrl))
}

func (d *demo) typeText(s string) {
	for _, r := range s {
		d.app.HandleEvent(tcell.NewEventKey(tcell.KeyRune, r, 0))
	}
}

func (d *demo) tab(title string) *ribbon.Tab {
	for _, t := range d.ribbon.Tabs() {
		if t.Title == title {
			return t
		}
	}
	return nil
}

func TestDemo_DefaultLayout(t *testing.T) {
	d, _ := newTestDemo(t, 160, 12)

	if got := d.ribbon.SelectedTab(); got == nil || got.Title != "Home" {
		t.Fatalf("selected %v, want Home", got)
	}
	dev := d.ribbon.TabByID(developerTab)
	if dev == nil || dev.IsVisible() {
		t.Errorf("Developer tab = %v, want present and collapsed", dev)
	}
	if got := d.status(); !strings.HasPrefix(got, "tab Home | align left") {
		t.Errorf("status() = %q", got)
	}
}

func TestDemo_ClipboardKeys(t *testing.T) {
	d, _ := newTestDemo(t, 160, 12)
	d.doc.SetText("hello world")

	d.doc.Select(0, 5)
	d.press(tcell.KeyCtrlC)
	if d.clip.text != "hello" {
		t.Errorf("copied %q, want hello", d.clip.text)
	}
	d.press(tcell.KeyCtrlX)
	if got := d.doc.String(); got != " world" {
		t.Errorf("after cut = %q, want %q", got, " world")
	}
	d.press(tcell.KeyCtrlV)
	if got := d.doc.String(); got != "hello world" {
		t.Errorf("after paste = %q, want %q", got, "hello world")
	}
	if d.last != "paste" {
		t.Errorf("last command = %q, want paste", d.last)
	}

	d.press(tcell.KeyCtrlA)
	d.press(tcell.KeyCtrlX)
	if d.doc.String() != "" || d.clip.text != "hello world" {
		t.Errorf("cut all left %q and copied %q", d.doc.String(), d.clip.text)
	}
}

func TestDemo_InsertCommands(t *testing.T) {
	d, _ := newTestDemo(t, 160, 12)

	for _, name := range []string{"insert-date", "insert-symbol"} {
		d.cmds[name](nil)
	}
	if got, want := d.doc.String(), "2024-03-01§"; got != want {
		t.Errorf("document = %q, want %q", got, want)
	}
	d.cmds["clear"](nil)
	if d.doc.String() != "" {
		t.Errorf("document = %q after clear", d.doc.String())
	}
}

func TestDemo_Find(t *testing.T) {
	d, s := newTestDemo(t, 160, 12)
	d.doc.SetText("hay needle hay")

	d.press(tcell.KeyCtrlF)
	if !d.app.PopupOpen() {
		t.Fatal("find popup not open")
	}
	d.typeText("needle")
	d.app.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, 0))
	settle(d.app, s)

	if d.app.PopupOpen() {
		t.Error("popup still open")
	}
	if got := d.doc.SelectedText(); got != "needle" {
		t.Errorf("selection = %q, want needle", got)
	}
	if d.app.Focused() != d.doc {
		t.Error("focus not back on the document")
	}

	d.press(tcell.KeyCtrlF)
	d.typeText("pin")
	d.app.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, 0))
	if d.note != `"pin" not found` {
		t.Errorf("note = %q", d.note)
	}

	// the Find button commits like Enter
	d.press(tcell.KeyCtrlF)
	settle(d.app, s)
	d.typeText("hay")
	for _, b := range []tcell.ButtonMask{tcell.Button1, tcell.ButtonNone} {
		d.app.HandleEvent(tcell.NewEventMouse(29, 6, b, 0))
	}
	if d.app.PopupOpen() {
		t.Fatal("popup still open after clicking Find")
	}
	if got := d.doc.SelectedText(); got != "hay" {
		t.Errorf("selection = %q, want hay", got)
	}
}

func TestDemo_StatusLine(t *testing.T) {
	d, s := newTestDemo(t, 160, 12)
	row := func() string {
		var b strings.Builder
		for x := range 160 {
			c, _, _, _ := s.GetContent(x, 11)
			b.WriteRune(c)
		}
		return strings.TrimSpace(b.String())
	}
	if got := row(); got != d.status() {
		t.Errorf("status line = %q, want %q", got, d.status())
	}

	d.showStatus = false
	settle(d.app, s)
	if got := row(); got != "" {
		t.Errorf("hidden status line = %q", got)
	}
}

func TestDemo_DeveloperToggleSurvivesReload(t *testing.T) {
	d, s := newTestDemo(t, 160, 12)
	view := d.tab("View")
	if !d.ribbon.SelectTab(view) {
		t.Fatal("SelectTab(View) failed")
	}
	toggle := findItem(view, developerItem)
	if toggle == nil {
		t.Fatal("no Developer toggle on View")
	}

	toggle.Activate()
	if !d.ribbon.TabByID(developerTab).IsVisible() {
		t.Fatal("Developer tab still collapsed")
	}

	d.reload()
	settle(d.app, s)

	sel := d.ribbon.SelectedTab()
	if sel == nil || sel.ID != view.ID || sel == view {
		t.Errorf("selected %v after reload, want the new View tab", sel)
	}
	if !d.ribbon.TabByID(developerTab).IsVisible() {
		t.Error("Developer tab collapsed by the reload")
	}
	if it := findItem(d.tab("View"), developerItem); it == nil || !it.Checked {
		t.Error("Developer toggle unchecked by the reload")
	}
}

func TestDemo_StatusReportsCompaction(t *testing.T) {
	d, s := newTestDemo(t, 160, 12)
	if strings.Contains(d.status(), "compacted") {
		t.Fatalf("status() = %q on a wide screen", d.status())
	}

	s.SetSize(40, 12)
	settle(d.app, s)
	if !strings.Contains(d.status(), "compacted") {
		t.Errorf("status() = %q at width 40", d.status())
	}
	d.cmds["dump"](nil)
	if !strings.Contains(d.note, "Clipboard=") {
		t.Errorf("dump note = %q", d.note)
	}
}

func TestPreview(t *testing.T) {
	l := config.DefaultLayout()

	tests := []struct {
		name    string
		width   int
		tab     string
		want    []string
		wantErr bool
	}{
		{name: "wide", width: 200, want: []string{"Home", "Clipboard    standard", "Editing      standard"}},
		{name: "narrow", width: 30, want: []string{"Home", "Clipboard    icon-only", "Editing      icon-only"}},
		{name: "collapsed tab", width: 120, tab: "developer", want: []string{"Layout       standard"}},
		{name: "unknown tab", width: 80, tab: "Mail", wantErr: true},
		{name: "too narrow", width: 5, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := preview(&buf, l, tt.width, tt.tab)
			if (err != nil) != tt.wantErr {
				t.Fatalf("preview() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("preview() output lacks %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestRootCmd_Preview(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	layout := filepath.Join(dir, "tabs.yaml")
	err := os.WriteFile(layout, []byte(`
tabs:
  - title: Mail
    groups:
      - title: Respond
        items:
          - {label: Reply, icon: R}
          - {label: Forward, icon: F}
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"preview", "--layout", layout, "-w", "60"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "Respond      standard") {
		t.Errorf("output:\n%s", out.String())
	}

	cmd = newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"preview", "--theme", "sepia"})
	if err := cmd.Execute(); err == nil {
		t.Error("Execute() accepted an unknown theme")
	}
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ribbon.log")
	s := config.Default()
	s.LogFile = path

	l, closer, err := newLogger(s)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	l.Debug("hidden")
	l.Info("layout applied", "tabs", 4)
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.Contains(got, "layout applied") || strings.Contains(got, "hidden") {
		t.Errorf("log file = %q", got)
	}

	s.LogLevel = "loud"
	if _, _, err := newLogger(s); err == nil {
		t.Error("newLogger() accepted an unknown level")
	}
}
