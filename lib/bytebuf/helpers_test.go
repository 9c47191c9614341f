package bytebuf

// fixedRecord is a fixed size test value (6 bytes)
type fixedRecord struct {
	A int32
	B uint16
}

const fixedRecordSize = 6

func (f fixedRecord) EncodedSize() int { return fixedRecordSize }

func (f fixedRecord) Encode(w Writer) {
	w.WriteI32(f.A)
	w.WriteU16(f.B)
}

func (f *fixedRecord) Decode(r *ByteReader) error {
	a, err := r.ReadI32()
	if err != nil {
		return err
	}
	b, err := r.ReadU16()
	if err != nil {
		return err
	}
	f.A, f.B = a, b
	return nil
}

type testLimit struct{}

func (testLimit) Max() int { return 8 }

const testListMax = 4

// composite nests bounded, optional and list values
type composite struct {
	ID    uint32
	Name  FastString[testLimit]
	Rec   *fixedRecord
	Items []fixedRecord
}

func (c composite) EncodedSize() int {
	return 4 + c.Name.EncodedSize() + OptionalSize(c.Rec) + ListSize(c.Items, testListMax)
}

func (c composite) Encode(w Writer) {
	w.WriteU32(c.ID)
	c.Name.Encode(w)
	WriteOptional(w, c.Rec)
	WriteList(w, c.Items, testListMax)
}

func (c *composite) Decode(r *ByteReader) (err error) {
	if c.ID, err = r.ReadU32(); err != nil {
		return err
	}
	if err = c.Name.Decode(r); err != nil {
		return err
	}
	if c.Rec, err = ReadOptional[fixedRecord](r); err != nil {
		return err
	}
	c.Items, err = ReadList[fixedRecord](r, testListMax)
	return err
}

// liar reports a size different from what it writes
type liar struct {
	reported int
	written  int
}

func (l liar) EncodedSize() int { return l.reported }

func (l liar) Encode(w Writer) {
	for i := 0; i < l.written; i++ {
		w.WriteU8(0xFF)
	}
}
