package bytebuf

import (
	"bytes"
	"errors"
	"testing"
)

// TestWriteValueCapacity tests that N values of total size S fit into S bytes but not into S-1
func TestWriteValueCapacity(t *testing.T) {
	const n = 10
	total := n * fixedRecordSize

	t.Run("ExactCapacity", func(t *testing.T) {
		buf := NewFastByteBuffer(make([]byte, total))
		for i := 0; i < n; i++ {
			if err := buf.WriteValue(fixedRecord{A: int32(i), B: uint16(i)}); err != nil {
				t.Fatalf("write %d failed: %v", i, err)
			}
		}
		if buf.Len() != total || buf.Remaining() != 0 {
			t.Errorf("expected %d bytes written and none remaining, got %d / %d", total, buf.Len(), buf.Remaining())
		}
	})

	t.Run("OneByteShort", func(t *testing.T) {
		region := bytes.Repeat([]byte{0xAA}, total-1)
		buf := NewFastByteBuffer(region)

		var err error
		for i := 0; i < n && err == nil; i++ {
			err = buf.WriteValue(fixedRecord{A: int32(i), B: uint16(i)})
		}

		if !errors.Is(err, ErrCapacity) {
			t.Fatalf("expected ErrCapacity, got %v", err)
		}

		// the failing write must not leave partial data behind
		written := (n - 1) * fixedRecordSize
		if buf.Len() != written {
			t.Errorf("expected cursor at %d, got %d", written, buf.Len())
		}
		for i := written; i < len(region); i++ {
			if region[i] != 0xAA {
				t.Fatalf("region modified at offset %d after failed write", i)
			}
		}

		// the buffer stays usable for smaller values
		if err := buf.WriteValue(liar{reported: 1, written: 1}); err != nil {
			t.Errorf("expected small write to succeed, got %v", err)
		}
	})
}

// TestPrimitiveEncoding tests the fixed width big endian layout of the primitive writers
func TestPrimitiveEncoding(t *testing.T) {
	tests := []struct {
		name  string
		write func(w Writer)
		want  []byte
	}{
		{"U8", func(w Writer) { w.WriteU8(0x7F) }, []byte{0x7F}},
		{"BoolTrue", func(w Writer) { w.WriteBool(true) }, []byte{1}},
		{"BoolFalse", func(w Writer) { w.WriteBool(false) }, []byte{0}},
		{"U16", func(w Writer) { w.WriteU16(0x0102) }, []byte{0x01, 0x02}},
		{"I16", func(w Writer) { w.WriteI16(-2) }, []byte{0xFF, 0xFE}},
		{"U32", func(w Writer) { w.WriteU32(0x01020304) }, []byte{1, 2, 3, 4}},
		{"I32", func(w Writer) { w.WriteI32(-1) }, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"U64", func(w Writer) { w.WriteU64(1) }, []byte{0, 0, 0, 0, 0, 0, 0, 1}},
		{"F32", func(w Writer) { w.WriteF32(1.0) }, []byte{0x3F, 0x80, 0, 0}},
		{"String", func(w Writer) { WriteString(w, "abc", 8) }, []byte{0, 3, 'a', 'b', 'c'}},
		{"StringTruncated", func(w Writer) { WriteString(w, "abcdef", 2) }, []byte{0, 2, 'a', 'b'}},
		{"Blob", func(w Writer) { WriteBlob(w, []byte{9, 8}, 8) }, []byte{0, 2, 9, 8}},
		{"OptionalAbsent", func(w Writer) { WriteOptional[fixedRecord](w, nil) }, []byte{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fast := NewFastByteBuffer(make([]byte, 32))
			tt.write(fast)
			if err := fast.Err(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(fast.AsBytes(), tt.want) {
				t.Errorf("fast buffer: got %v, want %v", fast.AsBytes(), tt.want)
			}

			slow := NewByteBuffer()
			tt.write(slow)
			if !bytes.Equal(slow.AsBytes(), tt.want) {
				t.Errorf("growable buffer: got %v, want %v", slow.AsBytes(), tt.want)
			}
		})
	}
}

// TestSizeMismatch tests that an encoder writing a different size than reported is rolled back
func TestSizeMismatch(t *testing.T) {
	for _, l := range []liar{{reported: 2, written: 4}, {reported: 4, written: 2}, {reported: 2, written: 10}} {
		buf := NewFastByteBuffer(make([]byte, 8))
		err := buf.WriteValue(l)
		if !errors.Is(err, ErrSizeMismatch) {
			t.Errorf("%+v: expected ErrSizeMismatch, got %v", l, err)
		}
		if buf.Len() != 0 || buf.Err() != nil {
			t.Errorf("%+v: expected rolled back buffer, got len %d err %v", l, buf.Len(), buf.Err())
		}
	}
}

// TestStickyError tests that primitive writes beyond capacity are recorded instead of panicking
func TestStickyError(t *testing.T) {
	buf := NewFastByteBuffer(make([]byte, 2))
	buf.WriteU32(1)
	if !errors.Is(buf.Err(), ErrCapacity) {
		t.Fatalf("expected sticky ErrCapacity, got %v", buf.Err())
	}
	if buf.Len() != 0 {
		t.Errorf("expected nothing written, got %d bytes", buf.Len())
	}

	// following writes keep failing until reset
	buf.WriteU8(1)
	if buf.Len() != 0 {
		t.Errorf("expected write after error to be ignored")
	}
	if err := buf.WriteValue(liar{reported: 1, written: 1}); err == nil {
		t.Errorf("expected WriteValue to report sticky error")
	}

	buf.Reset()
	buf.WriteU16(7)
	if buf.Err() != nil || buf.Len() != 2 {
		t.Errorf("expected buffer usable after reset, got len %d err %v", buf.Len(), buf.Err())
	}
}

// TestAsBytesAliasesRegion tests that AsBytes returns a view of the caller's region
func TestAsBytesAliasesRegion(t *testing.T) {
	var region [16]byte
	buf := NewFastByteBuffer(region[:])
	if err := buf.WriteValue(fixedRecord{A: 1, B: 2}); err != nil {
		t.Fatal(err)
	}
	out := buf.AsBytes()
	if len(out) != fixedRecordSize || buf.Cap() != len(region) {
		t.Fatalf("unexpected length %d / capacity %d", len(out), buf.Cap())
	}
	out[0] = 0x42
	if region[0] != 0x42 {
		t.Errorf("expected AsBytes to alias the region")
	}
}

// TestMarshal tests that the cold path produces the same bytes as the fast path
func TestMarshal(t *testing.T) {
	rec := fixedRecord{A: 99, B: 7}
	v := composite{ID: 5, Name: NewFastString[testLimit]("hello"), Rec: &rec, Items: []fixedRecord{rec, rec}}

	fast := NewFastByteBuffer(make([]byte, v.EncodedSize()))
	if err := fast.WriteValue(v); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(fast.AsBytes(), Marshal(v)) {
		t.Errorf("fast and growable encodings differ")
	}

	slow := NewByteBuffer()
	slow.WriteValue(v)
	slow.WriteValue(v)
	if slow.Len() != 2*v.EncodedSize() {
		t.Errorf("expected %d bytes, got %d", 2*v.EncodedSize(), slow.Len())
	}
	slow.Reset()
	if slow.Len() != 0 {
		t.Errorf("expected empty buffer after reset")
	}
}
