package record

import (
	"errors"
	"testing"
)

func newTestGraph() *Graph {
	g := NewGraph(1, 0)
	g.ClassTypes = []ClassType{
		{
			Name:        "Widget",
			LibraryID:   1,
			MemberNames: []string{"count", "label"},
			MemberTypes: []MemberType{
				{Kind: MemberTypePrimitive, Prim: PrimitiveInt32},
				{Kind: MemberTypeString},
			},
		},
	}
	g.Records[1] = &Class{
		ClassTypeID: 0,
		Members: []Member{
			PrimitiveMember(Int32(5)),
			ReferenceMember(2),
		},
	}
	g.Records[2] = &StringRecord{Value: "widget-one"}
	return g
}

func TestGraphClassMemberLookup(t *testing.T) {
	g := newTestGraph()
	class := AsClass(g.Records[1])

	m, err := g.ClassMember(class, "count")
	if err != nil {
		t.Fatalf("ClassMember(count): %v", err)
	}
	v, err := m.AsPrimitive()
	if err != nil {
		t.Fatalf("AsPrimitive: %v", err)
	}
	n, err := v.AsInt32()
	if err != nil || n != 5 {
		t.Fatalf("count = %d, %v, want 5", n, err)
	}

	rec, err := g.ClassMemberDeref(class, "label")
	if err != nil {
		t.Fatalf("ClassMemberDeref(label): %v", err)
	}
	if got := AsString(rec); got != "widget-one" {
		t.Fatalf("label = %q, want %q", got, "widget-one")
	}
}

func TestGraphClassMemberNotFound(t *testing.T) {
	g := newTestGraph()
	class := AsClass(g.Records[1])

	_, err := g.ClassMember(class, "nonexistent")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("ClassMember(nonexistent) error = %v, want ErrMemberNotFound", err)
	}

	var lookupErr *MemberLookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("error is not a *MemberLookupError: %v", err)
	}
	if lookupErr.ClassName != "Widget" || lookupErr.Member != "nonexistent" {
		t.Fatalf("unexpected MemberLookupError fields: %+v", lookupErr)
	}
}

func TestGraphClassTypeOutOfRange(t *testing.T) {
	g := newTestGraph()
	bad := &Class{ClassTypeID: 99}
	if _, err := g.ClassType(bad); !errors.Is(err, ErrClassTypeOutOfRange) {
		t.Fatalf("ClassType(out of range) = %v, want ErrClassTypeOutOfRange", err)
	}
}

func TestGraphNextID(t *testing.T) {
	g := NewGraph(0, 0)
	if got := g.NextID(); got != 1 {
		t.Fatalf("NextID on empty graph = %d, want 1", got)
	}
	g.Records[1] = &StringRecord{Value: "a"}
	g.Records[5] = &StringRecord{Value: "b"}
	g.Records[3] = &StringRecord{Value: "c"}
	if got := g.NextID(); got != 6 {
		t.Fatalf("NextID = %d, want 6", got)
	}
}

func TestGraphArrayMutation(t *testing.T) {
	g := NewGraph(0, 0)
	arr := &BinaryArray{ElementType: MemberType{Kind: MemberTypeObject}}
	g.AppendArrayElement(arr, ReferenceMember(10))
	g.AppendArrayElement(arr, ReferenceMember(11))
	if len(arr.Elements) != 2 {
		t.Fatalf("len(Elements) = %d, want 2", len(arr.Elements))
	}
	g.SetArrayElement(arr, 0, ReferenceMember(99))
	if ref, _ := arr.Elements[0].AsReference(); ref != 99 {
		t.Fatalf("Elements[0] = %d, want 99", ref)
	}
}

func TestGraphSetMemberByName(t *testing.T) {
	g := newTestGraph()
	class := AsClass(g.Records[1])

	if err := g.SetMemberByName(class, "count", PrimitiveMember(Int32(42))); err != nil {
		t.Fatalf("SetMemberByName: %v", err)
	}
	m, _ := g.ClassMember(class, "count")
	v, _ := m.AsPrimitive()
	n, _ := v.AsInt32()
	if n != 42 {
		t.Fatalf("count after SetMemberByName = %d, want 42", n)
	}

	if err := g.SetMemberByName(class, "missing", NullMember()); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("SetMemberByName(missing) = %v, want ErrMemberNotFound", err)
	}
}

func TestAsClassPanicsOnWrongVariant(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("AsClass on a StringRecord did not panic")
		}
	}()
	AsClass(&StringRecord{Value: "oops"})
}
