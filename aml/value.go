package aml

import "fmt"

// RegionSpace identifies the address space that an operation region provides
// a window into.
type RegionSpace uint8

// The list of region space types defined by the ACPI spec. Values in the
// 0x80-0xff range are OEM-defined; the raw space byte is preserved in the
// RegionSpace value.
const (
	RegionSpaceSystemMemory RegionSpace = iota
	RegionSpaceSystemIO
	RegionSpacePCIConfig
	RegionSpaceEmbController
	RegionSpaceSMBus
	RegionSpaceSystemCMOS
	RegionSpacePCIBarTarget
	RegionSpaceIPMI
	RegionSpaceGeneralPurposeIO
	RegionSpaceGenericSerialBus

	regionSpaceOEMBase RegionSpace = 0x80
)

// IsOEMDefined returns true if this region space falls in the OEM-defined
// range.
func (s RegionSpace) IsOEMDefined() bool {
	return s >= regionSpaceOEMBase
}

// String implements fmt.Stringer.
func (s RegionSpace) String() string {
	switch s {
	case RegionSpaceSystemMemory:
		return "SystemMemory"
	case RegionSpaceSystemIO:
		return "SystemIO"
	case RegionSpacePCIConfig:
		return "PciConfig"
	case RegionSpaceEmbController:
		return "EmbeddedControl"
	case RegionSpaceSMBus:
		return "SMBus"
	case RegionSpaceSystemCMOS:
		return "SystemCMOS"
	case RegionSpacePCIBarTarget:
		return "PciBarTarget"
	case RegionSpaceIPMI:
		return "IPMI"
	case RegionSpaceGeneralPurposeIO:
		return "GeneralPurposeIO"
	case RegionSpaceGenericSerialBus:
		return "GenericSerialBus"
	}

	if s.IsOEMDefined() {
		return fmt.Sprintf("OEMDefined(0x%02x)", uint8(s))
	}

	return fmt.Sprintf("RegionSpace(0x%02x)", uint8(s))
}

// FieldAccessType specifies the type of access (byte, word, e.t.c) used to
// read/write the contents of a field unit.
type FieldAccessType uint8

// The list of supported FieldAccessType values.
const (
	FieldAccessTypeAny FieldAccessType = iota
	FieldAccessTypeByte
	FieldAccessTypeWord
	FieldAccessTypeDword
	FieldAccessTypeQword
	FieldAccessTypeBuffer
)

// FieldAccessAttrib specifies additional information about a particular field
// access.
type FieldAccessAttrib uint8

// The list of supported FieldAccessAttrib values.
const (
	FieldAccessAttribQuick            FieldAccessAttrib = 0x02
	FieldAccessAttribSendReceive                        = 0x04
	FieldAccessAttribByte                               = 0x06
	FieldAccessAttribWord                               = 0x08
	FieldAccessAttribBlock                              = 0x0a
	FieldAccessAttribBytes                              = 0x0b // byteCount contains the number of bytes
	FieldAccessAttribProcessCall                        = 0x0c
	FieldAccessAttribBlockProcessCall                   = 0x0d
	FieldAccessAttribRawBytes                           = 0x0e // byteCount contains the number of bytes
	FieldAccessAttribRawProcessBytes                    = 0x0f // byteCount contains the number of bytes
)

// ValueType describes the contents of a Value.
type ValueType uint8

// The list of supported ValueType values. ValueTypePackage is reserved for
// the package grammar productions which are decoded at a later interpretation
// stage.
const (
	ValueTypeInteger ValueType = iota
	ValueTypeOpRegion
	ValueTypeBuffer
	ValueTypeString
	ValueTypeFieldUnit
	ValueTypePackage
)

// Value is a typed AML object produced by the parser and stored in the
// namespace. Exactly one of the payload fields is valid depending on Type.
type Value struct {
	Type ValueType

	// Integer is valid when Type is ValueTypeInteger. All integer widths
	// are promoted to 64 bits.
	Integer uint64

	// Region is valid when Type is ValueTypeOpRegion.
	Region RegionDesc

	// Buffer is valid when Type is ValueTypeBuffer and holds the buffer
	// initializer bytes.
	Buffer []byte

	// Str is valid when Type is ValueTypeString.
	Str string

	// Field is valid when Type is ValueTypeFieldUnit.
	Field FieldUnitDesc
}

// RegionDesc describes an operation region: a named window onto a
// hardware-addressable resource.
type RegionDesc struct {
	Space  RegionSpace
	Offset uint64
	Length uint64
}

// FieldUnitDesc describes a named bit range inside an operation region
// declared by a field unit list.
type FieldUnitDesc struct {
	// RegionPath is the absolute namespace path of the operation region
	// that this field unit provides access to.
	RegionPath string

	// Flags holds the raw FieldFlags byte of the enclosing field
	// declaration (access type in bits[0:3], lock rule in bit 4, update
	// rule in bits[5:6]).
	Flags uint8

	AccessType   FieldAccessType
	AccessAttrib FieldAccessAttrib

	// ByteCount is non-zero for the access attributes that carry an
	// explicit byte count (Bytes, RawBytes and RawProcessBytes).
	ByteCount uint8

	BitOffset uint32
	BitWidth  uint32

	// ConnectionName holds the name expression of the resource declared
	// by a preceding connect field, if any.
	ConnectionName string
}
