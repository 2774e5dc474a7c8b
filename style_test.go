package gravit

import (
	"errors"
	"testing"
)

// styledScene builds a scene with a shared style holding one fill and n
// rectangles linked to it.
func styledScene(t *testing.T, n int) (*Scene, *Node, []*Node) {
	t.Helper()
	s := NewScene()
	layer := s.AddLayer("L")
	shared := s.AddSharedStyle("Brand")
	if err := shared.AppendChild(NewFill(SolidPattern{Color: ColorBlack})); err != nil {
		t.Fatal(err)
	}
	var linked []*Node
	for i := 0; i < n; i++ {
		r := NewRectangle(float64(i*20), 0, 10, 10)
		if err := layer.AppendChild(r); err != nil {
			t.Fatal(err)
		}
		l, err := s.LinkStyle(r, shared)
		if err != nil {
			t.Fatal(err)
		}
		linked = append(linked, l)
	}
	return s, shared, linked
}

func fillColor(style *Node) Color {
	for _, a := range style.Children() {
		if a.Kind == KindFill {
			if p, ok := a.PatternProperty().(SolidPattern); ok {
				return p.Color
			}
		}
	}
	return Color{}
}

func TestSharedStyleGetsReference(t *testing.T) {
	s := NewScene()
	a := s.AddSharedStyle("A")
	b := s.AddSharedStyle("B")
	if ReferenceID(a) == "" || ReferenceID(a) == ReferenceID(b) {
		t.Errorf("refs = %q, %q; want distinct non-empty", ReferenceID(a), ReferenceID(b))
	}
	if s.StyleByRef(ReferenceID(b)) != b {
		t.Error("StyleByRef did not return the shared style")
	}
}

func TestLinkStyleCopiesContent(t *testing.T) {
	_, shared, linked := styledScene(t, 1)
	l := linked[0]
	if ReferenceID(l) != ReferenceID(shared) {
		t.Errorf("ref = %q, want %q", ReferenceID(l), ReferenceID(shared))
	}
	if l.Name() != "Brand" {
		t.Errorf("Name = %q, want Brand", l.Name())
	}
	if got := fillColor(l); got != ColorBlack {
		t.Errorf("fill = %v, want black", got)
	}
	if l.Children()[0] == shared.Children()[0] {
		t.Error("linked style shares attribute nodes with the shared style")
	}
}

func TestFanOutAttributeChange(t *testing.T) {
	s, shared, linked := styledScene(t, 3)
	red := Color{1, 0, 0, 1}

	if err := shared.Children()[0].SetProperty("pattern", SolidPattern{Color: red}); err != nil {
		t.Fatal(err)
	}
	for i, l := range linked {
		if got := fillColor(l); got != red {
			t.Errorf("linked[%d] fill = %v, want red", i, got)
		}
	}
	if s.LinkCount(ReferenceID(shared)) != 3 {
		t.Errorf("LinkCount = %d, want 3", s.LinkCount(ReferenceID(shared)))
	}
}

func TestFanOutStyleProperties(t *testing.T) {
	_, shared, linked := styledScene(t, 2)
	_ = linked[0].SetProperty("opacity", 0.25)

	if err := shared.SetProperties([]string{"name", "blend", "opacity"}, []any{"Renamed", Multiply, 0.5}); err != nil {
		t.Fatal(err)
	}
	for i, l := range linked {
		if l.Name() != "Renamed" {
			t.Errorf("linked[%d] name = %q, want Renamed", i, l.Name())
		}
		if op, _ := l.Property("blend").(CompositeOp); op != Multiply {
			t.Errorf("linked[%d] blend = %v, want multiply", i, op)
		}
	}
	// Linked styles keep their own opacity.
	if got := linked[0].FloatProperty("opacity"); got != 0.25 {
		t.Errorf("linked[0] opacity = %v, want 0.25", got)
	}
	if got := linked[1].FloatProperty("opacity"); got != 1 {
		t.Errorf("linked[1] opacity = %v, want 1", got)
	}
}

func TestFanOutAddedAttribute(t *testing.T) {
	_, shared, linked := styledScene(t, 2)
	if err := shared.AppendChild(NewStroke(SolidPattern{Color: ColorWhite}, 3, StrokeOutside)); err != nil {
		t.Fatal(err)
	}
	for i, l := range linked {
		if n := l.NumChildren(); n != 2 {
			t.Errorf("linked[%d] attributes = %d, want 2", i, n)
		}
	}
	// The new stroke grows the linked shapes' paint boxes.
	r := linked[0].Parent().Parent()
	want := Rect{-3, -3, 16, 16}
	if got := r.PaintBBox(); got != want {
		t.Errorf("PaintBBox = %v, want %v", got, want)
	}
}

func TestFanOutSingleNotificationPerLink(t *testing.T) {
	s, shared, linked := styledScene(t, 2)
	after := map[*Node]int{}
	s.AddListener(EventAfterPropertiesChange, func(ev Event) {
		after[ev.(AfterPropertiesChange).Node]++
	})
	_ = shared.SetProperty("name", "X")
	for i, l := range linked {
		if after[l] != 1 {
			t.Errorf("linked[%d] After count = %d, want 1", i, after[l])
		}
	}
}

func TestVisitLinksOrderAndStop(t *testing.T) {
	s, shared, linked := styledScene(t, 3)
	var order []*Node
	s.VisitLinks(ReferenceID(shared), func(l *Node) bool {
		order = append(order, l)
		return len(order) < 2
	})
	if len(order) != 2 || order[0] != linked[0] || order[1] != linked[1] {
		t.Errorf("visited %d links, want first two in ID order", len(order))
	}
}

func TestDisconnectStyle(t *testing.T) {
	s, shared, linked := styledScene(t, 2)
	ref := ReferenceID(shared)
	if err := s.DisconnectStyle(shared); err != nil {
		t.Fatal(err)
	}
	if s.LinkCount(ref) != 0 {
		t.Errorf("LinkCount = %d, want 0", s.LinkCount(ref))
	}
	if s.StyleByRef(ref) != nil {
		t.Error("shared style still indexed")
	}
	if shared.Parent() != nil {
		t.Error("shared style still in collection")
	}
	for i, l := range linked {
		if ReferenceID(l) != "" {
			t.Errorf("linked[%d] ref = %q, want empty", i, ReferenceID(l))
		}
		// Content survives the disconnect.
		if fillColor(l) != ColorBlack {
			t.Errorf("linked[%d] lost its fill", i)
		}
	}
}

func TestDisconnectStyleRejectsNonShared(t *testing.T) {
	s := NewScene()
	if err := s.DisconnectStyle(NewInlineStyle()); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("err = %v, want ErrInvalidValue", err)
	}
}

func TestRelinkResyncs(t *testing.T) {
	s, _, linked := styledScene(t, 1)
	other := s.AddSharedStyle("Other")
	_ = other.AppendChild(NewFill(SolidPattern{Color: ColorWhite}))

	if err := linked[0].SetProperty("ref", ReferenceID(other)); err != nil {
		t.Fatal(err)
	}
	if got := fillColor(linked[0]); got != ColorWhite {
		t.Errorf("fill after relink = %v, want white", got)
	}
	if s.LinkCount(ReferenceID(other)) != 1 {
		t.Errorf("LinkCount(other) = %d, want 1", s.LinkCount(ReferenceID(other)))
	}
}

func TestSharedRefRenameFollowsLinks(t *testing.T) {
	s, shared, linked := styledScene(t, 2)
	if err := shared.SetProperty("ref", "brand"); err != nil {
		t.Fatal(err)
	}
	if s.StyleByRef("brand") != shared {
		t.Error("renamed ref not indexed")
	}
	for i, l := range linked {
		if ReferenceID(l) != "brand" {
			t.Errorf("linked[%d] ref = %q, want brand", i, ReferenceID(l))
		}
	}
}

func TestSharedRefRenameRejectsTakenID(t *testing.T) {
	s, shared, linked := styledScene(t, 1)
	other := s.AddSharedStyle("Other")
	ref := ReferenceID(shared)
	err := other.SetProperty("ref", ref)
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("err = %v, want ErrInvalidValue", err)
	}
	if s.StyleByRef(ref) != shared {
		t.Error("index moved to the rejected style")
	}
	if ReferenceID(linked[0]) != ref {
		t.Errorf("linked ref = %q, want %q", ReferenceID(linked[0]), ref)
	}
	if err := shared.SetProperty("ref", ref); err != nil {
		t.Errorf("re-setting own ref: %v", err)
	}
}

func TestSuspendLinkSync(t *testing.T) {
	s, shared, linked := styledScene(t, 1)
	s.SuspendLinkSync()
	_ = shared.SetProperty("name", "Quiet")
	if linked[0].Name() != "Brand" {
		t.Errorf("name = %q, want Brand while suspended", linked[0].Name())
	}
	s.ResumeLinkSync()
	_ = shared.SetProperty("name", "Loud")
	if linked[0].Name() != "Loud" {
		t.Errorf("name = %q, want Loud", linked[0].Name())
	}
}

func TestRemovingLinkedShapeUnindexes(t *testing.T) {
	s, shared, linked := styledScene(t, 2)
	linked[0].Parent().Parent().RemoveFromParent()
	if got := s.LinkCount(ReferenceID(shared)); got != 1 {
		t.Errorf("LinkCount = %d, want 1", got)
	}
}
