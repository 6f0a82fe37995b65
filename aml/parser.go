package aml

import (
	"fmt"
	"io"
	"strings"
)

// Parser implements the AML bytecode parser: a recursive descent decoder over
// the definition block of a DSDT or SSDT table that writes the objects it
// declares into a Namespace.
type Parser struct {
	r         amlStreamReader
	errWriter io.Writer
	ns        *Namespace
	scope     string
	tableName string
}

// NewParser returns a new AML parser instance that inserts decoded objects
// into ns and emits any encountered errors to the specified errWriter.
func NewParser(errWriter io.Writer, ns *Namespace) *Parser {
	return &Parser{
		errWriter: errWriter,
		ns:        ns,
	}
}

// ParseTable attempts to parse the AML bytecode contained in data relative to
// the supplied scope (usually the namespace root `\`). Objects are inserted
// into the namespace as their declarations are encountered; entries inserted
// before a failure point are kept and the error identifies the table, the
// stream offset and the failure kind.
func (p *Parser) ParseTable(tableName, scope string, data []byte) *Error {
	p.tableName = tableName
	p.scope = scope
	p.r.Init(data, 0)

	if err := p.parseTermList(p.r.Len()); err != nil {
		fmt.Fprintf(p.errWriter, "[table: %s, offset: %d] %s\n", p.tableName, err.Offset, err.Error())
		return err
	}

	return nil
}

// tryParse speculatively applies parseFn to the stream. A failure with kind
// ErrUnexpectedByte means "this is not that production": the stream is
// restored to its pre-call state and no error is reported. Any other failure
// propagates with the stream left at the point of failure so that the caller
// does not retry.
func (p *Parser) tryParse(parseFn func(*Parser) *Error) (bool, *Error) {
	snapshot := p.r

	if err := parseFn(p); err != nil {
		if err.Kind == ErrUnexpectedByte {
			p.r = snapshot
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// tryParseValue behaves like tryParse for productions that yield a value.
func (p *Parser) tryParseValue(parseFn func(*Parser) (Value, *Error)) (Value, bool, *Error) {
	snapshot := p.r

	val, err := parseFn(p)
	if err != nil {
		if err.Kind == ErrUnexpectedByte {
			p.r = snapshot
			return Value{}, false, nil
		}

		return Value{}, false, err
	}

	return val, true, nil
}

// consumeByte reads the next byte off the stream and checks it against want.
func (p *Parser) consumeByte(want byte) *Error {
	next, err := p.r.ReadByte()
	if err != nil {
		return err
	}

	if next != want {
		return &Error{Kind: ErrUnexpectedByte, Offset: p.r.Offset() - 1, Byte: next}
	}

	return nil
}

// consumeExtOpcode consumes the two-byte extended opcode sequence for op.
func (p *Parser) consumeExtOpcode(op byte) *Error {
	if err := p.consumeByte(extOpPrefix); err != nil {
		return err
	}

	return p.consumeByte(op)
}

// matchOpcode reports whether the next byte in the stream matches op without
// advancing the read pointer.
func (p *Parser) matchOpcode(op byte) (bool, *Error) {
	next, err := p.r.PeekByte()
	if err != nil {
		return false, err
	}

	return next == op, nil
}

// matchExtOpcode reports whether the next two bytes in the stream are the
// extended opcode prefix followed by op. Both bytes are consumed on a match;
// otherwise the read pointer is left where it was.
func (p *Parser) matchExtOpcode(op byte) (bool, *Error) {
	next, err := p.r.PeekByte()
	if err != nil {
		return false, err
	}

	if next != extOpPrefix {
		return false, nil
	}

	_, _ = p.r.ReadByte()

	if next, err = p.r.PeekByte(); err != nil {
		return false, err
	}

	if next != op {
		if berr := p.r.Backtrack(1); berr != nil {
			return false, berr
		}

		return false, nil
	}

	_, _ = p.r.ReadByte()
	return true, nil
}

// parseTermList parses term objects until the read offset reaches endOffset.
// Term lists carry no PkgLength of their own; the caller supplies the end
// offset decoded from the enclosing construct (or the stream length for the
// outermost list). The loop condition is driven by the end offset rather than
// by stream content so a malformed stream cannot loop indefinitely.
//
// Grammar:
// TermList := Nothing | <TermObj TermList>
func (p *Parser) parseTermList(endOffset uint32) *Error {
	for p.r.Offset() < endOffset {
		if err := p.parseTermObject(); err != nil {
			return err
		}
	}

	return nil
}

// parseTermObject parses a single term object. The first production whose
// leading byte(s) match wins; field declarations and the type-1 opcode family
// share leading bytes with other productions and are tried speculatively.
//
// Grammar:
// TermObj := NameSpaceModifierObj | NamedObj | Type1Opcode | Type2Opcode
// NameSpaceModifierObj := DefAlias | DefName | DefScope
// NamedObj := DefBankField | DefCreateBitField | DefCreateByteField |
//             DefCreateDWordField | DefCreateField | DefCreateQWordField |
//             DefCreateWordField | DefDataRegion | DefExternal | DefOpRegion |
//             DefPowerRes | DefProcessor | DefThermalZone
func (p *Parser) parseTermObject() *Error {
	if match, err := p.matchOpcode(opScope); err != nil {
		return err
	} else if match {
		return p.parseDefScope()
	}

	if match, err := p.matchExtOpcode(extOpRegionOp); err != nil {
		return err
	} else if match {
		return p.parseDefOpRegion()
	}

	if match, err := p.tryParse((*Parser).parseDefField); err != nil {
		return err
	} else if match {
		return nil
	}

	if match, err := p.tryParse((*Parser).parseType1Opcode); err != nil {
		return err
	} else if match {
		return nil
	}

	next, err := p.r.PeekByte()
	if err != nil {
		return err
	}

	return &Error{Kind: ErrUnexpectedByte, Offset: p.r.Offset(), Byte: next}
}

// parseDefScope parses a scope block and the term list it encloses. The
// working scope is swapped to the resolved scope name for the duration of the
// nested term list and re-established on every exit path so that a failed
// nested parse cannot leak its scope into the caller.
//
// Grammar:
// DefScope := ScopeOp(0x10) PkgLength NameString TermList
func (p *Parser) parseDefScope() *Error {
	if err := p.consumeByte(opScope); err != nil {
		return err
	}

	scopeEndOffset, err := p.parsePkgLength()
	if err != nil {
		return err
	}

	name, err := p.parseNameString()
	if err != nil {
		return err
	}

	resolved, err := p.resolvePath(name)
	if err != nil {
		return err
	}

	prevScope := p.scope
	defer func() { p.scope = prevScope }()
	p.scope = resolved

	return p.parseTermList(scopeEndOffset)
}

// parseDefOpRegion parses an operation region declaration and inserts it into
// the namespace at the resolved region name.
//
// Grammar:
// DefOpRegion := ExtOpPrefix(0x5b) OpRegionOp(0x80) NameString RegionSpace RegionOffset RegionLen
// RegionSpace := ByteData (where 0x00      = SystemMemory
//                                0x01      = SystemIO
//                                0x02      = PciConfig
//                                0x03      = EmbeddedControl
//                                0x04      = SMBus
//                                0x05      = SystemCMOS
//                                0x06      = PciBarTarget
//                                0x07      = IPMI
//                                0x08      = GeneralPurposeIO
//                                0x09      = GenericSerialBus
//                                0x80-0xff = OEM defined)
// RegionOffset := TermArg => Integer
// RegionLen := TermArg => Integer
//
// parseDefOpRegion expects the extended opcode to have been consumed by the
// term object dispatcher.
func (p *Parser) parseDefOpRegion() *Error {
	name, err := p.parseNameString()
	if err != nil {
		return err
	}

	spaceOffset := p.r.Offset()
	space, err := p.r.ReadByte()
	if err != nil {
		return err
	}

	regionSpace := RegionSpace(space)
	if regionSpace > RegionSpaceGenericSerialBus && !regionSpace.IsOEMDefined() {
		return &Error{Kind: ErrUnexpectedByte, Offset: spaceOffset, Byte: space}
	}

	regionOffset, err := p.parseIntegerTermArg()
	if err != nil {
		return err
	}

	regionLen, err := p.parseIntegerTermArg()
	if err != nil {
		return err
	}

	path, err := p.resolvePath(name)
	if err != nil {
		return err
	}

	p.ns.Insert(path, Value{
		Type: ValueTypeOpRegion,
		Region: RegionDesc{
			Space:  regionSpace,
			Offset: regionOffset,
			Length: regionLen,
		},
	})

	return nil
}

// parseDefField parses a field declaration and the field unit list it
// encloses.
//
// Grammar:
// DefField := ExtOpPrefix(0x5b) FieldOp(0x81) PkgLength NameString FieldFlags FieldList
func (p *Parser) parseDefField() *Error {
	if err := p.consumeExtOpcode(extFieldOp); err != nil {
		return err
	}

	endOffset, err := p.parsePkgLength()
	if err != nil {
		return err
	}

	name, err := p.parseNameString()
	if err != nil {
		return err
	}

	flags, err := p.r.ReadByte()
	if err != nil {
		return err
	}

	regionPath, err := p.resolvePath(name)
	if err != nil {
		return err
	}

	return p.parseFieldList(regionPath, flags, endOffset)
}

// parseFieldList parses field elements until the read offset reaches
// endOffset, inserting one field unit value into the namespace per named
// element. The access directives update the state that subsequent named
// elements inherit; the initial access type comes from the FieldFlags byte of
// the enclosing field declaration.
//
// Grammar:
// FieldElement := NamedField | ReservedField | AccessField |
//                 ExtendedAccessField | ConnectField
// NamedField := NameSeg PkgLength
// ReservedField := 0x00 PkgLength
// AccessField := 0x01 AccessType AccessAttrib
// ExtendedAccessField := 0x03 AccessType ExtendedAccessAttrib AccessLength
// ConnectField := <0x02 NameString> | <0x02 BufferData>
func (p *Parser) parseFieldList(regionPath string, flags byte, endOffset uint32) *Error {
	var (
		accessType      = FieldAccessType(flags & 0xf) // access type; bits[0:3]
		accessAttrib    FieldAccessAttrib
		accessByteCount uint8
		connectionName  string
		curBitOffset    uint32
	)

	for p.r.Offset() < endOffset {
		next, err := p.r.ReadByte()
		if err != nil {
			return err
		}

		switch next {
		case 0x00: // ReservedField; generated by the Offset() command
			bitWidth, _, err := p.parsePkgLengthValue()
			if err != nil {
				return err
			}

			curBitOffset += bitWidth
		case 0x01: // AccessField; set access attributes for following fields
			next, err := p.r.ReadByte()
			if err != nil {
				return err
			}
			accessType = FieldAccessType(next & 0xf) // access type; bits[0:3]

			attrib, err := p.r.ReadByte()
			if err != nil {
				return err
			}

			// To specify the Bytes, RawBytes and RawProcessBytes
			// attributes the ASL compiler emits an
			// ExtendedAccessField opcode instead.
			accessByteCount = 0
			accessAttrib = FieldAccessAttrib(attrib)
		case 0x02: // ConnectField; only the NameString form is decoded
			if connectionName, err = p.parseNameString(); err != nil {
				return err
			}
		case 0x03: // ExtendedAccessField
			next, err := p.r.ReadByte()
			if err != nil {
				return err
			}
			accessType = FieldAccessType(next & 0xf) // access type; bits[0:3]

			extAccessAttrib, err := p.r.ReadByte()
			if err != nil {
				return err
			}

			if accessByteCount, err = p.r.ReadByte(); err != nil {
				return err
			}

			switch extAccessAttrib {
			case 0x0b:
				accessAttrib = FieldAccessAttribBytes
			case 0x0e:
				accessAttrib = FieldAccessAttribRawBytes
			case 0x0f:
				accessAttrib = FieldAccessAttribRawProcessBytes
			}
		default: // NamedField := NameSeg PkgLength
			if err := p.r.Backtrack(1); err != nil {
				return err
			}

			seg, err := p.parseNameSeg()
			if err != nil {
				return err
			}

			bitWidth, _, err := p.parsePkgLengthValue()
			if err != nil {
				return err
			}

			// Field units are visible at the same scope as the
			// field declaration that contains them.
			path, err := p.resolvePath(string(seg[:]))
			if err != nil {
				return err
			}

			p.ns.Insert(path, Value{
				Type: ValueTypeFieldUnit,
				Field: FieldUnitDesc{
					RegionPath:     regionPath,
					Flags:          flags,
					AccessType:     accessType,
					AccessAttrib:   accessAttrib,
					ByteCount:      accessByteCount,
					BitOffset:      curBitOffset,
					BitWidth:       bitWidth,
					ConnectionName: connectionName,
				},
			})

			curBitOffset += bitWidth
		}
	}

	return nil
}

// parseIntegerTermArg parses a term argument that must reduce to an integer.
func (p *Parser) parseIntegerTermArg() (uint64, *Error) {
	argOffset := p.r.Offset()
	lead, err := p.r.PeekByte()
	if err != nil {
		return 0, err
	}

	val, err := p.parseTermArg()
	if err != nil {
		return 0, err
	}

	if val.Type != ValueTypeInteger {
		return 0, &Error{Kind: ErrUnexpectedByte, Offset: argOffset, Byte: lead}
	}

	return val.Integer, nil
}

// parseTermArg parses a term argument. Only data objects are decoded at this
// stage; the type-2 expression opcodes together with method-local and
// method-arg references belong to the interpretation stage.
//
// Grammar:
// TermArg := Type2Opcode | DataObject | ArgObj | LocalObj
// DataObject := ComputationalData | DefPackage | DefVarPackage
func (p *Parser) parseTermArg() (Value, *Error) {
	if val, match, err := p.tryParseValue((*Parser).parseComputationalData); err != nil {
		return Value{}, err
	} else if match {
		return val, nil
	}

	next, err := p.r.PeekByte()
	if err != nil {
		return Value{}, err
	}

	return Value{}, &Error{Kind: ErrUnexpectedByte, Offset: p.r.Offset(), Byte: next}
}

// parseComputationalData parses a literal data object. Each literal form has
// a unique leading byte in this subset so dispatch is not ambiguous.
//
// Grammar:
// ComputationalData := ByteConst | WordConst | DWordConst | QWordConst |
//                      String | ConstObj | RevisionOp | DefBuffer
// ByteConst := BytePrefix(0x0a) ByteData
// WordConst := WordPrefix(0x0b) WordData
// DWordConst := DWordPrefix(0x0c) DWordData
// QWordConst := QWordPrefix(0x0e) QWordData
// ConstObj := ZeroOp(0x00) | OneOp(0x01) | OnesOp(0xff)
// RevisionOp := ExtOpPrefix(0x5b) 0x30
func (p *Parser) parseComputationalData() (Value, *Error) {
	next, err := p.r.PeekByte()
	if err != nil {
		return Value{}, err
	}

	switch next {
	case opBytePrefix:
		_, _ = p.r.ReadByte()
		val, err := p.r.ReadByte()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: ValueTypeInteger, Integer: uint64(val)}, nil
	case opWordPrefix:
		_, _ = p.r.ReadByte()
		val, err := p.r.ReadWord()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: ValueTypeInteger, Integer: uint64(val)}, nil
	case opDwordPrefix:
		_, _ = p.r.ReadByte()
		val, err := p.r.ReadDword()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: ValueTypeInteger, Integer: uint64(val)}, nil
	case opQwordPrefix:
		_, _ = p.r.ReadByte()
		val, err := p.r.ReadQword()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: ValueTypeInteger, Integer: val}, nil
	case opStringPrefix:
		return p.parseString()
	case opZero:
		_, _ = p.r.ReadByte()
		return Value{Type: ValueTypeInteger, Integer: 0}, nil
	case opOne:
		_, _ = p.r.ReadByte()
		return Value{Type: ValueTypeInteger, Integer: 1}, nil
	case opOnes:
		_, _ = p.r.ReadByte()
		return Value{Type: ValueTypeInteger, Integer: ^uint64(0)}, nil
	case opBuffer:
		return p.parseDefBuffer()
	}

	if match, err := p.matchExtOpcode(extRevisionOp); err != nil {
		return Value{}, err
	} else if match {
		return Value{}, &Error{Kind: ErrUnsupported, Offset: p.r.Offset() - 2, Production: "RevisionOp"}
	}

	return Value{}, &Error{Kind: ErrUnexpectedByte, Offset: p.r.Offset(), Byte: next}
}

// parseString parses a string literal: printable ASCII characters terminated
// by a null byte.
//
// Grammar:
// String := StringPrefix(0x0d) AsciiCharList NullChar
// AsciiChar := 0x01 - 0x7f
// NullChar := 0x00
func (p *Parser) parseString() (Value, *Error) {
	if err := p.consumeByte(opStringPrefix); err != nil {
		return Value{}, err
	}

	var str []byte
	for {
		curOffset := p.r.Offset()
		next, err := p.r.ReadByte()
		if err != nil {
			return Value{}, err
		}

		if next == 0x00 {
			break
		}

		if next > 0x7f {
			return Value{}, &Error{Kind: ErrUnexpectedByte, Offset: curOffset, Byte: next}
		}

		str = append(str, next)
	}

	return Value{Type: ValueTypeString, Str: string(str)}, nil
}

// parseDefBuffer parses a buffer object. The decoded value keeps the
// initializer bytes; the declared buffer size may be larger, in which case
// the remainder reads as zero at the interpretation stage.
//
// Grammar:
// DefBuffer := BufferOp(0x11) PkgLength BufferSize ByteList
// BufferSize := TermArg => Integer
func (p *Parser) parseDefBuffer() (Value, *Error) {
	if err := p.consumeByte(opBuffer); err != nil {
		return Value{}, err
	}

	endOffset, err := p.parsePkgLength()
	if err != nil {
		return Value{}, err
	}

	if _, err = p.parseIntegerTermArg(); err != nil {
		return Value{}, err
	}

	var data []byte
	for p.r.Offset() < endOffset {
		next, err := p.r.ReadByte()
		if err != nil {
			return Value{}, err
		}

		data = append(data, next)
	}

	return Value{Type: ValueTypeBuffer, Buffer: data}, nil
}

// parseType1Opcode covers the control flow opcode family (If, While, Return,
// Notify and friends). The parser recognizes these opcodes but defers their
// decoding to the interpretation stage; encountering one is reported as an
// explicit unsupported error rather than a grammar violation.
//
// Grammar:
// Type1Opcode := DefBreak | DefBreakPoint | DefContinue | DefFatal |
//                DefIfElse | DefLoad | DefNoop | DefNotify | DefRelease |
//                DefReset | DefReturn | DefSignal | DefSleep | DefStall |
//                DefUnload | DefWhile
func (p *Parser) parseType1Opcode() *Error {
	curOffset := p.r.Offset()
	next, err := p.r.ReadByte()
	if err != nil {
		return err
	}

	if next == extOpPrefix {
		extOffset := p.r.Offset()
		ext, err := p.r.ReadByte()
		if err != nil {
			return err
		}

		switch ext {
		case extLoadOp, extStallOp, extSleepOp, extSignalOp, extResetOp, extReleaseOp, extUnloadOp, extFatalOp:
			return &Error{Kind: ErrUnsupported, Offset: curOffset, Production: "Type1Opcode"}
		}

		return &Error{Kind: ErrUnexpectedByte, Offset: extOffset, Byte: ext}
	}

	switch next {
	case opNotify, opContinue, opIf, opElse, opWhile, opNoop, opReturn, opBreak, opBreakPoint:
		return &Error{Kind: ErrUnsupported, Offset: curOffset, Production: "Type1Opcode"}
	}

	return &Error{Kind: ErrUnexpectedByte, Offset: curOffset, Byte: next}
}

// parsePkgLengthValue decodes a raw PkgLength value off the stream and
// returns it together with the number of prefix bytes consumed.
//
// Grammar:
// PkgLength := PkgLeadByte |
//              <PkgLeadByte ByteData> |
//              <PkgLeadByte ByteData ByteData> |
//              <PkgLeadByte ByteData ByteData ByteData>
func (p *Parser) parsePkgLengthValue() (length, prefixLen uint32, err *Error) {
	lead, err := p.r.ReadByte()
	if err != nil {
		return 0, 0, err
	}

	// The high 2 bits of the lead byte indicate how many bytes follow.
	extraBytes := uint32(lead >> 6)
	if extraBytes == 0 {
		return uint32(lead & 0x3f), 1, nil
	}

	// lead bits 0-3 hold the low nybble of the length; each extra byte
	// contributes 8 more bits, least significant byte first.
	length = uint32(lead & 0xf)
	for i := uint32(0); i < extraBytes; i++ {
		next, err := p.r.ReadByte()
		if err != nil {
			return 0, 0, err
		}

		length |= uint32(next) << (4 + i*8)
	}

	return length, extraBytes + 1, nil
}

// parsePkgLength decodes a PkgLength prefix and converts it into the absolute
// stream offset at which the construct it bounds ends. The encoded length
// includes the prefix bytes already consumed, so they are subtracted back
// out.
func (p *Parser) parsePkgLength() (uint32, *Error) {
	length, prefixLen, err := p.parsePkgLengthValue()
	if err != nil {
		return 0, err
	}

	return p.r.Offset() + length - prefixLen, nil
}

// parseNameString parses a name expression: an optional root or parent
// prefix followed by a name path. The returned string keeps the prefix
// characters; resolvePath applies them against the current scope.
//
// Grammar:
// NameString := <RootChar('\') NamePath> | <PrefixPath NamePath>
// PrefixPath := Nothing | <'^' PrefixPath>
func (p *Parser) parseNameString() (string, *Error) {
	next, err := p.r.PeekByte()
	if err != nil {
		return "", err
	}

	switch next {
	case '\\': // RootChar
		_, _ = p.r.ReadByte()

		path, err := p.parseNamePath()
		if err != nil {
			return "", err
		}

		return "\\" + path, nil
	case '^': // PrefixPath
		var prefix []byte
		for {
			if next, err = p.r.PeekByte(); err != nil {
				return "", err
			}

			if next != '^' {
				break
			}

			prefix = append(prefix, next)
			_, _ = p.r.ReadByte()
		}

		path, err := p.parseNamePath()
		if err != nil {
			return "", err
		}

		return string(prefix) + path, nil
	default:
		return p.parseNamePath()
	}
}

// parseNamePath parses the path portion of a name expression. Name segments
// are concatenated without separators; each segment is exactly 4 characters.
//
// Grammar:
// NamePath := NameSeg | DualNamePath | MultiNamePath | NullName
// DualNamePath := DualNamePrefix(0x2e) NameSeg NameSeg
// MultiNamePath := MultiNamePrefix(0x2f) SegCount{ByteData} NameSeg(SegCount)
func (p *Parser) parseNamePath() (string, *Error) {
	next, err := p.r.PeekByte()
	if err != nil {
		return "", err
	}

	switch next {
	case nullName:
		_, _ = p.r.ReadByte()
		return "", nil
	case dualNamePrefix:
		_, _ = p.r.ReadByte()

		first, err := p.parseNameSeg()
		if err != nil {
			return "", err
		}

		second, err := p.parseNameSeg()
		if err != nil {
			return "", err
		}

		return string(first[:]) + string(second[:]), nil
	case multiNamePrefix:
		_, _ = p.r.ReadByte()

		countOffset := p.r.Offset()
		segCount, err := p.r.ReadByte()
		if err != nil {
			return "", err
		}

		if segCount == 0 {
			return "", &Error{Kind: ErrUnexpectedByte, Offset: countOffset, Byte: segCount}
		}

		var path []byte
		for i := byte(0); i < segCount; i++ {
			seg, err := p.parseNameSeg()
			if err != nil {
				return "", err
			}

			path = append(path, seg[:]...)
		}

		return string(path), nil
	default:
		seg, err := p.parseNameSeg()
		if err != nil {
			return "", err
		}

		return string(seg[:]), nil
	}
}

// parseNameSeg parses a single 4-character name segment.
//
// Grammar:
// NameSeg := <LeadNameChar NameChar NameChar NameChar>
// LeadNameChar := 'A'-'Z' | '_'
// NameChar := LeadNameChar | '0'-'9'
func (p *Parser) parseNameSeg() ([4]byte, *Error) {
	var seg [4]byte

	for i := 0; i < len(seg); i++ {
		curOffset := p.r.Offset()
		next, err := p.r.ReadByte()
		if err != nil {
			return seg, err
		}

		if valid := isLeadNameChar(next) || (i > 0 && isDigitChar(next)); !valid {
			return seg, &Error{Kind: ErrUnexpectedByte, Offset: curOffset, Byte: next}
		}

		seg[i] = next
	}

	return seg, nil
}

// resolvePath resolves a parsed name expression against the current scope and
// returns the absolute namespace path. Root-anchored expressions come back
// unchanged; each leading '^' pops one segment off a working copy of the
// scope before the remainder is appended.
func (p *Parser) resolvePath(path string) (string, *Error) {
	if p.scope == "" || strings.HasPrefix(path, "\\") {
		return path, nil
	}

	expr := path
	scope := p.scope
	for strings.HasPrefix(path, "^") {
		path = path[1:]

		// The root marker is a single character; every segment after
		// it is 4 characters long.
		if len(scope) <= 1 {
			return "", &Error{Kind: ErrInvalidPath, Offset: p.r.Offset(), Path: expr}
		}

		scope = scope[:len(scope)-4]
	}

	return scope + path, nil
}

func isLeadNameChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') || b == '_'
}

func isDigitChar(b byte) bool {
	return b >= '0' && b <= '9'
}
