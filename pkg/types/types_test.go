package types

import "testing"

func TestAlignToIdempotent(t *testing.T) {
	cases := []struct{ n, align int }{
		{0, 8}, {1, 8}, {7, 8}, {8, 8}, {9, 8}, {5, 4}, {16, 16}, {17, 16},
	}
	for _, c := range cases {
		first := AlignTo(c.n, c.align)
		second := AlignTo(first, c.align)
		if first != second {
			t.Errorf("AlignTo(%d,%d)=%d not idempotent, got %d on second pass", c.n, c.align, first, second)
		}
		if first < c.n {
			t.Errorf("AlignTo(%d,%d)=%d is less than n", c.n, c.align, first)
		}
		if first%c.align != 0 {
			t.Errorf("AlignTo(%d,%d)=%d is not a multiple of align", c.n, c.align, first)
		}
	}
}

func TestStructOfLaysOutMembersWithAlignment(t *testing.T) {
	// struct { char a; int b; char c; } — b must land on a 4-byte boundary.
	members := []*Member{
		{Name: "a", Type: TypeChar},
		{Name: "b", Type: TypeInt},
		{Name: "c", Type: TypeChar},
	}
	st := StructOf("s", members)

	if members[0].Offset != 0 {
		t.Errorf("a.Offset = %d, want 0", members[0].Offset)
	}
	if members[1].Offset != 4 {
		t.Errorf("b.Offset = %d, want 4", members[1].Offset)
	}
	if members[2].Offset != 8 {
		t.Errorf("c.Offset = %d, want 8", members[2].Offset)
	}
	if st.Align != 4 {
		t.Errorf("struct align = %d, want 4", st.Align)
	}
	if st.Size != 12 {
		t.Errorf("struct size = %d, want 12 (rounded up to align)", st.Size)
	}
}

func TestUnionOfOverlaysMembers(t *testing.T) {
	members := []*Member{
		{Name: "i", Type: TypeInt},
		{Name: "c", Type: TypeChar},
	}
	u := UnionOf("u", members)
	for _, m := range members {
		if m.Offset != 0 {
			t.Errorf("union member %s.Offset = %d, want 0", m.Name, m.Offset)
		}
	}
	if u.Size != 4 {
		t.Errorf("union size = %d, want 4 (widest member)", u.Size)
	}
}

func TestIs64BitClassification(t *testing.T) {
	if TypeInt.Is64Bit() {
		t.Error("int should not be 64-bit")
	}
	if !TypeLong.Is64Bit() {
		t.Error("long should be 64-bit")
	}
	if !PointerTo(TypeInt).Is64Bit() {
		t.Error("pointer should be 64-bit")
	}
	if !ArrayOf(TypeInt, 4).Is64Bit() {
		t.Error("array should be 64-bit (decays to pointer arithmetic)")
	}
}
