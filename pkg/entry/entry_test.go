package entry

import (
	"testing"
)

func TestGroupFlags(t *testing.T) {
	var f GroupFlags
	f |= UpdateTitles | UpdateOrder

	if !f.Has(UpdateTitles) {
		t.Error("expected UpdateTitles to be set")
	}
	if !f.Has(UpdateTitles | UpdateOrder) {
		t.Error("expected combined flags to be set")
	}
	if f.Has(UpdateStructure) {
		t.Error("did not expect UpdateStructure to be set")
	}

	f &^= UpdateTitles
	if f.Has(UpdateTitles) {
		t.Error("expected UpdateTitles to be cleared")
	}
	if !f.Has(UpdateOrder) {
		t.Error("clearing one flag must not clear another")
	}
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"function":  CategoryFunction,
		"Func":      CategoryFunction,
		"FUNCTIONS": CategoryFunction,
		"var":       CategoryVariable,
		"general":   CategoryGeneral,
		"classes":   CategoryClass,
		"const":     CategoryConstant,
	}
	for word, want := range cases {
		got, ok := ParseCategory(word)
		if !ok {
			t.Errorf("ParseCategory(%q) not recognized", word)
			continue
		}
		if got != want {
			t.Errorf("ParseCategory(%q) = %v, want %v", word, got, want)
		}
	}
	if _, ok := ParseCategory("nonsense"); ok {
		t.Error("expected nonsense to be rejected")
	}
}

func TestGroupsPreOrder(t *testing.T) {
	root := NewGroup("")
	a := NewGroup("A")
	b := NewGroup("B")
	inner := NewGroup("A-inner")
	a.Add(NewFile("f", "f.go", false), inner)
	root.Add(a, b)

	groups := root.Groups()
	want := []*Entry{root, a, inner, b}
	if len(groups) != len(want) {
		t.Fatalf("got %d groups, want %d", len(groups), len(want))
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Errorf("group %d = %q, want %q", i, groups[i].Title, want[i].Title)
		}
	}
}

func TestEndMarker(t *testing.T) {
	g := NewGroup("G")
	g.Add(NewFile("a", "a.go", false))
	g.EnsureEndMarker()
	g.Add(NewFile("b", "b.go", false))

	if !g.Flags.Has(HasEndMarker) {
		t.Fatal("expected HasEndMarker to be set")
	}
	if idx := g.EndMarkerIndex(); idx != 1 {
		t.Fatalf("marker index = %d, want 1", idx)
	}

	// A second EnsureEndMarker must not add another marker.
	g.EnsureEndMarker()
	count := 0
	for _, c := range g.Children {
		if c.Kind == KindEndOriginal {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("marker count = %d, want 1", count)
	}

	originals := g.StripEndMarker()
	if originals != 1 {
		t.Errorf("originals = %d, want 1", originals)
	}
	if g.EndMarkerIndex() != -1 {
		t.Error("marker still present after strip")
	}
	if g.Flags.Has(HasEndMarker) {
		t.Error("HasEndMarker still set after strip")
	}
}

func TestEqualIgnoresFlagsAndMarkers(t *testing.T) {
	a := NewGroup("")
	ag := NewGroup("G")
	ag.Add(NewFile("t", "t.go", false))
	a.Add(ag)

	b := NewGroup("")
	bg := NewGroup("G")
	bg.Flags = UpdateTitles | UpdateOrder
	bg.Sort = FilesSorted
	bg.Add(NewFile("t", "t.go", false))
	bg.EnsureEndMarker()
	b.Add(bg)

	if !Equal(a, b) {
		t.Error("trees differing only in flags and markers must compare equal")
	}

	bg.Children[0].Locked = true
	if Equal(a, b) {
		t.Error("lock state must participate in comparison")
	}
}

func TestInsertRemove(t *testing.T) {
	g := NewGroup("G")
	f1 := NewFile("a", "a.go", false)
	f2 := NewFile("c", "c.go", false)
	g.Add(f1, f2)

	mid := NewFile("b", "b.go", false)
	g.InsertAt(1, mid)
	if g.Children[1] != mid {
		t.Fatal("InsertAt put the entry in the wrong place")
	}
	if got := g.RemoveAt(1); got != mid {
		t.Fatal("RemoveAt returned the wrong entry")
	}
	if len(g.Children) != 2 || g.Children[0] != f1 || g.Children[1] != f2 {
		t.Fatal("RemoveAt corrupted the child list")
	}
}
