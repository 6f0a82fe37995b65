package aml

// The single-byte AML opcodes handled by the parser. Two-byte opcodes are
// encoded as extOpPrefix followed by one of the ext values below.
const (
	opZero         = 0x00
	opOne          = 0x01
	opBytePrefix   = 0x0a
	opWordPrefix   = 0x0b
	opDwordPrefix  = 0x0c
	opStringPrefix = 0x0d
	opQwordPrefix  = 0x0e
	opScope        = 0x10
	opBuffer       = 0x11
	opNotify       = 0x86
	opContinue     = 0x9f
	opIf           = 0xa0
	opElse         = 0xa1
	opWhile        = 0xa2
	opNoop         = 0xa3
	opReturn       = 0xa4
	opBreak        = 0xa5
	opBreakPoint   = 0xcc
	opOnes         = 0xff

	extOpPrefix = 0x5b

	extLoadOp     = 0x20
	extStallOp    = 0x21
	extSleepOp    = 0x22
	extSignalOp   = 0x24
	extResetOp    = 0x26
	extReleaseOp  = 0x27
	extUnloadOp   = 0x2a
	extRevisionOp = 0x30
	extFatalOp    = 0x32
	extOpRegionOp = 0x80
	extFieldOp    = 0x81
)

// The prefix bytes used by NamePath productions.
const (
	nullName        = 0x00
	dualNamePrefix  = 0x2e
	multiNamePrefix = 0x2f
)
