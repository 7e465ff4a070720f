package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func selected(t *testing.T, m tea.Model) string {
	t.Helper()
	p, ok := m.(BrowserModel).Selected()
	if !ok {
		t.Fatal("no package selected")
	}
	return p.Name
}

func TestBrowserSortsByRisk(t *testing.T) {
	m := NewBrowserModel(testSnapshot())
	if got := selected(t, m); got != "lodash" {
		t.Errorf("first package = %q, want lodash", got)
	}

	next := press(m, "down")
	if got := selected(t, next); got != "minimist" {
		t.Errorf("second package = %q, want minimist", got)
	}
}

func TestBrowserCyclesSort(t *testing.T) {
	m := press(NewBrowserModel(testSnapshot()), "s", "s")
	if got := selected(t, m); got != "left-pad" {
		t.Errorf("first package sorted by name = %q, want left-pad", got)
	}
	if !strings.Contains(m.View(), "sort: name") {
		t.Errorf("view does not show the sort field:\n%s", m.View())
	}
}

func TestBrowserFilter(t *testing.T) {
	m := press(NewBrowserModel(testSnapshot()), "f", "f")
	b := m.(BrowserModel)
	if len(b.visible) != 2 {
		t.Fatalf("medium filter shows %d packages, want 2", len(b.visible))
	}
	for _, p := range b.visible {
		if p.Name != "minimist" && p.Name != "mystery" {
			t.Errorf("unexpected package %q under medium filter", p.Name)
		}
	}
}

func TestBrowserSearch(t *testing.T) {
	m := press(NewBrowserModel(testSnapshot()), "/", "l", "e", "f", "enter")
	b := m.(BrowserModel)
	if b.searching {
		t.Error("enter should leave search mode")
	}
	if len(b.visible) != 1 || b.visible[0].Name != "left-pad" {
		t.Errorf("search result = %v, want only left-pad", b.visible)
	}
}

func TestBrowserDetail(t *testing.T) {
	m := press(NewBrowserModel(testSnapshot()), "enter")
	view := m.View()
	if !strings.Contains(view, "lodash@1.0.0") || !strings.Contains(view, "Vulnerabilities") {
		t.Errorf("detail view missing package info:\n%s", view)
	}

	m = press(m, "esc")
	if m.(BrowserModel).detail {
		t.Error("esc should close the detail view")
	}
}

func TestBrowserQuit(t *testing.T) {
	_, cmd := NewBrowserModel(testSnapshot()).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
