package aml

import "testing"

func TestStreamReader(t *testing.T) {
	buf := make([]byte, 16)
	for i := 0; i < len(buf); i++ {
		buf[i] = byte(i)
	}

	t.Run("without offset", func(t *testing.T) {
		var r amlStreamReader
		r.Init(buf, 0)

		if r.EOF() {
			t.Fatal("unexpected EOF")
		}

		if exp, got := uint32(len(buf)), r.Len(); got != exp {
			t.Fatalf("expected Len to return %d; got %d", exp, got)
		}

		for i := 0; i < len(buf); i++ {
			exp := byte(i)

			next, err := r.PeekByte()
			if err != nil {
				t.Fatal(err)
			}
			if next != exp {
				t.Fatalf("expected PeekByte to return %d; got %d", exp, next)
			}

			next, err = r.ReadByte()
			if err != nil {
				t.Fatal(err)
			}
			if next != exp {
				t.Fatalf("expected ReadByte to return %d; got %d", exp, next)
			}
		}

		if _, err := r.PeekByte(); err == nil || err.Kind != ErrEndOfStream {
			t.Fatalf("expected ErrEndOfStream; got %v", err)
		}
		if _, err := r.ReadByte(); err == nil || err.Kind != ErrEndOfStream {
			t.Fatalf("expected ErrEndOfStream; got %v", err)
		}
	})

	t.Run("with offset", func(t *testing.T) {
		var r amlStreamReader
		r.Init(buf, 8)

		if exp, got := uint32(8), r.Offset(); got != exp {
			t.Fatalf("expected Offset to return %d; got %d", exp, got)
		}

		exp := byte(8)
		if next, _ := r.ReadByte(); next != exp {
			t.Fatalf("expected ReadByte to return %d; got %d", exp, next)
		}
	})
}

func TestStreamReaderMultiByteReads(t *testing.T) {
	t.Run("word", func(t *testing.T) {
		var r amlStreamReader
		r.Init([]byte{0x34, 0x12}, 0)

		val, err := r.ReadWord()
		if err != nil {
			t.Fatal(err)
		}

		if exp := uint16(0x1234); val != exp {
			t.Fatalf("expected ReadWord to return 0x%x; got 0x%x", exp, val)
		}

		if exp, got := uint32(2), r.Offset(); got != exp {
			t.Fatalf("expected Offset to return %d; got %d", exp, got)
		}
	})

	t.Run("dword", func(t *testing.T) {
		var r amlStreamReader
		r.Init([]byte{0x78, 0x56, 0x34, 0x12}, 0)

		val, err := r.ReadDword()
		if err != nil {
			t.Fatal(err)
		}

		if exp := uint32(0x12345678); val != exp {
			t.Fatalf("expected ReadDword to return 0x%x; got 0x%x", exp, val)
		}

		if exp, got := uint32(4), r.Offset(); got != exp {
			t.Fatalf("expected Offset to return %d; got %d", exp, got)
		}
	})

	t.Run("qword", func(t *testing.T) {
		var r amlStreamReader
		r.Init([]byte{0xef, 0xcd, 0xab, 0x89, 0x67, 0x45, 0x23, 0x01}, 0)

		val, err := r.ReadQword()
		if err != nil {
			t.Fatal(err)
		}

		if exp := uint64(0x0123456789abcdef); val != exp {
			t.Fatalf("expected ReadQword to return 0x%x; got 0x%x", exp, val)
		}

		if exp, got := uint32(8), r.Offset(); got != exp {
			t.Fatalf("expected Offset to return %d; got %d", exp, got)
		}
	})

	t.Run("truncated stream", func(t *testing.T) {
		var r amlStreamReader
		r.Init([]byte{0x34}, 0)

		if _, err := r.ReadWord(); err == nil || err.Kind != ErrEndOfStream {
			t.Fatalf("expected ErrEndOfStream; got %v", err)
		}

		r.Init([]byte{1, 2, 3}, 0)
		if _, err := r.ReadDword(); err == nil || err.Kind != ErrEndOfStream {
			t.Fatalf("expected ErrEndOfStream; got %v", err)
		}

		r.Init([]byte{1, 2, 3, 4, 5, 6, 7}, 0)
		if _, err := r.ReadQword(); err == nil || err.Kind != ErrEndOfStream {
			t.Fatalf("expected ErrEndOfStream; got %v", err)
		}
	})
}

func TestStreamReaderBacktrack(t *testing.T) {
	buf := []byte{10, 20, 30, 40}

	var r amlStreamReader
	r.Init(buf, 0)

	first := make([]byte, 3)
	for i := range first {
		next, err := r.ReadByte()
		if err != nil {
			t.Fatal(err)
		}
		first[i] = next
	}

	if err := r.Backtrack(3); err != nil {
		t.Fatal(err)
	}

	if exp, got := uint32(0), r.Offset(); got != exp {
		t.Fatalf("expected Offset to return %d after backtrack; got %d", exp, got)
	}

	// Re-reading must reproduce the same bytes.
	for i := range first {
		next, err := r.ReadByte()
		if err != nil {
			t.Fatal(err)
		}
		if next != first[i] {
			t.Fatalf("expected re-read byte %d to be %d; got %d", i, first[i], next)
		}
	}

	err := r.Backtrack(4)
	if err == nil || err.Kind != ErrBacktrackedFromStart {
		t.Fatalf("expected ErrBacktrackedFromStart; got %v", err)
	}

	// A failed backtrack must leave the offset untouched.
	if exp, got := uint32(3), r.Offset(); got != exp {
		t.Fatalf("expected Offset to return %d; got %d", exp, got)
	}
}
