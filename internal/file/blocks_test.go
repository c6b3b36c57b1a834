package file

import "testing"

func TestBlockListAppendWithinOneBlock(t *testing.T) {
	t.Parallel()
	bl := newBlockList(8)
	n := bl.append([]byte("hello"))
	if n != 5 {
		t.Fatalf("append returned %d, want 5", n)
	}
	var got string
	bl.withSlice(0, 5, func(p []byte) { got = string(p) })
	if got != "hello" {
		t.Fatalf("withSlice = %q, want hello", got)
	}
}

func TestBlockListAppendAcrossBlocks(t *testing.T) {
	t.Parallel()
	bl := newBlockList(4)
	data := []byte("abcdefgh") // exactly two 4-byte blocks
	written := 0
	for written < len(data) {
		n := bl.append(data[written:])
		written += n
	}
	if len(bl.blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(bl.blocks))
	}

	var got string
	bl.withSlice(2, 6, func(p []byte) { got = string(p) })
	if got != "cdef" {
		t.Fatalf("withSlice(2,6) = %q, want cdef", got)
	}
}

func TestBlockListWithSliceEmptyRange(t *testing.T) {
	t.Parallel()
	bl := newBlockList(4)
	bl.append([]byte("data"))
	var called bool
	var got []byte
	bl.withSlice(2, 2, func(p []byte) { called = true; got = p })
	if !called || got != nil {
		t.Fatalf("expected f(nil) for empty range, got %v", got)
	}
}

func TestBlockListWithSliceBeyondWritten(t *testing.T) {
	t.Parallel()
	bl := newBlockList(4)
	var got []byte
	bl.withSlice(0, 4, func(p []byte) { got = p })
	if len(got) != 0 {
		t.Fatalf("withSlice into empty blockList = %v, want empty", got)
	}
}
