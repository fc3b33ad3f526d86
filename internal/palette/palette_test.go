package palette

import (
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/1broseidon/paneswitch/internal/ipc"
)

// fakeRun records the command and answers with reply.
type fakeRun struct {
	args  []string
	stdin string
	reply string
	err   error
}

func (f *fakeRun) run(cmd *exec.Cmd) ([]byte, error) {
	f.args = cmd.Args[1:]
	data, _ := io.ReadAll(cmd.Stdin)
	f.stdin = string(data)
	return []byte(f.reply), f.err
}

func testLauncher(command string, f *fakeRun) *launcher {
	l := newLauncher(command)
	l.run = f.run
	return l
}

func testWindows() []ipc.WindowInfo {
	return []ipc.WindowInfo{
		{ID: 11, Owner: "Firefox", Title: "Docs", Shortcut: "f"},
		{ID: 12, Owner: "Firefox", Title: "Docs"},
		{ID: 21, Owner: "Mail", AppOnly: true, Shortcut: "m"},
	}
}

func TestRofiRowsCarryAttributes(t *testing.T) {
	f := &fakeRun{reply: "2\n"}
	l := testLauncher("rofi", f)

	idx, err := l.Show("window", []Item{
		{Label: "Desktop 1", IsHeader: true},
		{Label: "Firefox <Docs>", Icon: "firefox", Meta: "docs", IsActive: true},
		{Label: "Mail"},
	})
	if err != nil || idx != 2 {
		t.Fatalf("Show = %d, %v; want 2", idx, err)
	}

	rows := strings.Split(f.stdin, "\n")
	if rows[0] != "<b>Desktop 1</b>\x00nonselectable\x1ftrue" {
		t.Fatalf("unexpected header row %q", rows[0])
	}
	if rows[1] != "Firefox &lt;Docs&gt;\x00icon\x1ffirefox\x1fmeta\x1fdocs" {
		t.Fatalf("unexpected window row %q", rows[1])
	}
	if strings.Count(rows[1], "\x00") != 1 {
		t.Fatalf("expected a single NUL separator in %q", rows[1])
	}
	joined := strings.Join(f.args, " ")
	if !strings.Contains(joined, "-format i") || !strings.Contains(joined, "-selected-row 1") || !strings.Contains(joined, "-p window") {
		t.Fatalf("unexpected rofi args %q", joined)
	}
}

func TestDmenuMatchesDisambiguatedLabels(t *testing.T) {
	f := &fakeRun{reply: "[f] Firefox - Docs (2)\n"}
	l := testLauncher("dmenu", f)

	items := WindowItems([]ipc.WindowInfo{
		{ID: 11, Owner: "Firefox", Title: "Docs", Shortcut: "f"},
		{ID: 12, Owner: "Firefox", Title: "Docs", Shortcut: "f"},
	})
	idx, err := l.Show("window", items)
	if err != nil || idx != 1 {
		t.Fatalf("Show = %d, %v; want 1", idx, err)
	}
	if strings.Contains(f.stdin, "\x00") || strings.Contains(f.stdin, "<b>") {
		t.Fatalf("dmenu input must be plain text, got %q", f.stdin)
	}
}

func TestShowErrors(t *testing.T) {
	f := &fakeRun{reply: ""}
	if _, err := testLauncher("fuzzel", f).Show("", []Item{{Label: "a"}}); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled for empty output, got %v", err)
	}

	f = &fakeRun{reply: "7"}
	if _, err := testLauncher("fuzzel", f).Show("", []Item{{Label: "a"}}); err == nil {
		t.Fatalf("expected out-of-range index error")
	}

	f = &fakeRun{reply: "0"}
	if _, err := testLauncher("rofi", f).Show("", []Item{{Label: "h", IsHeader: true}}); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected header selection to cancel, got %v", err)
	}

	if _, err := testLauncher("rofi", f).Show("", nil); err == nil {
		t.Fatalf("expected error for empty menu")
	}
}

func TestPickWindow(t *testing.T) {
	f := &fakeRun{reply: "2"}
	w, err := PickWindow(testLauncher("rofi", f), testWindows())
	if err != nil {
		t.Fatalf("PickWindow: %v", err)
	}
	if w.ID != 21 {
		t.Fatalf("expected Mail (21), got %+v", w)
	}
	if !strings.Contains(f.stdin, "[m] Mail  (no windows)") {
		t.Fatalf("unexpected menu input %q", f.stdin)
	}

	if _, err := PickWindow(testLauncher("rofi", f), nil); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled with no windows, got %v", err)
	}
}

func TestWindowItems(t *testing.T) {
	items := WindowItems([]ipc.WindowInfo{{Owner: "Visual Studio Code", Title: "main.go", Shortcut: "v"}})
	if items[0].Label != "[v] Visual Studio Code - main.go" || items[0].Icon != "visual-studio-code" || !items[0].IsActive {
		t.Fatalf("unexpected item %+v", items[0])
	}
}

func TestNewBackend(t *testing.T) {
	installed := map[string]bool{"wofi": true, "dmenu": true}
	orig := lookPath
	lookPath = func(name string) (string, error) {
		if installed[name] {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { lookPath = orig })

	b, err := NewBackend("auto")
	if err != nil || b.Name() != "wofi" {
		t.Fatalf("auto = %v, %v; want wofi", b, err)
	}
	if b, err = NewBackend("DMENU"); err != nil || b.Name() != "dmenu" {
		t.Fatalf("dmenu = %v, %v", b, err)
	}
	if _, err = NewBackend("rofi"); err == nil {
		t.Fatalf("expected error for missing rofi")
	}
	if _, err = NewBackend("zenity"); err == nil {
		t.Fatalf("expected error for unknown launcher")
	}
}
