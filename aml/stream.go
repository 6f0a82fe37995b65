package aml

// amlStreamReader provides a bounds-checked cursor over the raw bytecode of a
// single AML definition block. Copying a reader is cheap: the underlying
// slice is shared and each copy tracks its own offset. The parser relies on
// this to snapshot the stream before a speculative parse and roll back on a
// failed match.
type amlStreamReader struct {
	offset uint32
	data   []byte
}

// Init sets up the reader so it can read up to len(data) bytes. If a non-zero
// initialOffset is specified, it will be used as the current offset in the
// stream.
func (r *amlStreamReader) Init(data []byte, initialOffset uint32) {
	r.data = data
	r.SetOffset(initialOffset)
}

// EOF returns true if the end of the stream has been reached.
func (r *amlStreamReader) EOF() bool {
	return r.offset == uint32(len(r.data))
}

// PeekByte returns the next byte from the stream without advancing the read
// pointer.
func (r *amlStreamReader) PeekByte() (byte, *Error) {
	if r.EOF() {
		return 0, &Error{Kind: ErrEndOfStream, Offset: r.offset}
	}

	return r.data[r.offset], nil
}

// ReadByte returns the next byte from the stream.
func (r *amlStreamReader) ReadByte() (byte, *Error) {
	if r.EOF() {
		return 0, &Error{Kind: ErrEndOfStream, Offset: r.offset}
	}

	r.offset++
	return r.data[r.offset-1], nil
}

// ReadWord returns the next two bytes from the stream assembled as a
// little-endian word.
func (r *amlStreamReader) ReadWord() (uint16, *Error) {
	lo, err := r.ReadByte()
	if err != nil {
		return 0, err
	}

	hi, err := r.ReadByte()
	if err != nil {
		return 0, err
	}

	return uint16(lo) | uint16(hi)<<8, nil
}

// ReadDword returns the next four bytes from the stream assembled as a
// little-endian double word.
func (r *amlStreamReader) ReadDword() (uint32, *Error) {
	var res uint32
	for c := uint32(0); c < 4; c++ {
		next, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		res |= uint32(next) << (8 * c)
	}

	return res, nil
}

// ReadQword returns the next eight bytes from the stream assembled as a
// little-endian quad word.
func (r *amlStreamReader) ReadQword() (uint64, *Error) {
	var res uint64
	for c := uint64(0); c < 8; c++ {
		next, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		res |= uint64(next) << (8 * c)
	}

	return res, nil
}

// Backtrack moves the read pointer back by n bytes. Moving past the start of
// the stream is an error and leaves the read pointer unchanged.
func (r *amlStreamReader) Backtrack(n uint32) *Error {
	if n > r.offset {
		return &Error{Kind: ErrBacktrackedFromStart, Offset: r.offset}
	}

	r.offset -= n
	return nil
}

// Len returns the total length of the stream.
func (r *amlStreamReader) Len() uint32 {
	return uint32(len(r.data))
}

// Offset returns the current offset.
func (r *amlStreamReader) Offset() uint32 {
	return r.offset
}

// SetOffset sets the reader offset to the supplied value.
func (r *amlStreamReader) SetOffset(off uint32) {
	r.offset = off
}
