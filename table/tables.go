// Package table defines the layout of the standard ACPI tables and provides
// helpers for decoding and validating them from mapped firmware memory.
package table

import (
	"bytes"
	"encoding/binary"
)

// Error describes problems detected while decoding or validating ACPI tables.
type Error struct {
	Module  string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Module + ": " + e.Message
}

var (
	errTruncatedRSDP    = &Error{Module: "acpi_table", Message: "RSDP data is smaller than the descriptor"}
	errBadRSDPSignature = &Error{Module: "acpi_table", Message: "RSDP signature mismatch"}
	errTruncatedHeader  = &Error{Module: "acpi_table", Message: "table data is smaller than the standard header"}
	errBadTableLength   = &Error{Module: "acpi_table", Message: "table length field is smaller than the standard header"}
	errChecksumMismatch = &Error{Module: "acpi_table", Message: "detected checksum mismatch while validating table"}
	errMissingDSDT      = &Error{Module: "acpi_table", Message: "FADT does not define a DSDT address"}
)

// The wire sizes of the structures defined by this package.
const (
	HeaderSize  = 36
	RSDPSize    = 20
	ExtRSDPSize = 36
)

// RSDPSignature is the signature that prefixes a valid RSDP (last byte is a
// space).
var RSDPSignature = [8]byte{'R', 'S', 'D', ' ', 'P', 'T', 'R', ' '}

// Resolver is an interface implemented by objects that can look up an ACPI
// table by its name.
//
// LookupTable attempts to locate a table by name and returns back its full
// contents (standard header included) or nil if the table could not be
// found. The resolver must make sure that the entire table contents are
// mapped so they can be accessed by the caller.
type Resolver interface {
	LookupTable(string) []byte
}

// RSDPDescriptor defines the root system descriptor pointer for ACPI 1.0.
// This is used as the entry-point for parsing ACPI data.
type RSDPDescriptor struct {
	// The signature must contain "RSD PTR " (last byte is a space).
	Signature [8]byte

	// A value that when added to the sum of all other bytes contained in
	// this descriptor should result in the value 0.
	Checksum uint8

	OEMID [6]byte

	// ACPI revision number. It is 0 for ACPI1.0 and 2 for versions 2.0 to 6.2.
	Revision uint8

	// Physical address of 32-bit root system descriptor table.
	RSDTAddr uint32
}

// ExtRSDPDescriptor extends RSDPDescriptor with additional fields. It is used
// when RSDPDescriptor.Revision > 1.
type ExtRSDPDescriptor struct {
	RSDPDescriptor

	// The size of the 64-bit root system descriptor table.
	Length uint32

	// Physical address of 64-bit root system descriptor table.
	XSDTAddr uint64

	// A value that when added to the sum of all other bytes contained in
	// this descriptor should result in the value 0.
	ExtendedChecksum uint8

	Reserved [3]byte
}

// SDTHeader defines the common header for all ACPI-related tables.
type SDTHeader struct {
	// The signature defines the table type.
	Signature [4]byte

	// The length of the table.
	Length uint32

	// If this header belongs to a DSDT/SSDT table, the revision is also
	// used to indicate whether the AML code should treat integers as
	// 32-bits (revision < 2) or 64-bits (revision >= 2).
	Revision uint8

	// A value that when added to the sum of all other bytes in the table
	// should result in the value 0.
	Checksum uint8

	// OEM specific information
	OEMID       [6]byte
	OEMTableID  [8]byte
	OEMRevision uint32

	// Information about the ASL compiler that generated this table
	CreatorID       uint32
	CreatorRevision uint32
}

// ParseRSDP decodes a root system descriptor pointer from the supplied data,
// verifying its signature and checksum. For descriptors with revision >= 2
// the extended fields are decoded and the extended checksum is verified as
// well.
func ParseRSDP(data []byte) (*ExtRSDPDescriptor, *Error) {
	if len(data) < RSDPSize {
		return nil, errTruncatedRSDP
	}

	var rsdp ExtRSDPDescriptor
	_ = binary.Read(bytes.NewReader(data[:RSDPSize]), binary.LittleEndian, &rsdp.RSDPDescriptor)

	if rsdp.Signature != RSDPSignature {
		return nil, errBadRSDPSignature
	}

	if err := ValidateChecksum(data[:RSDPSize]); err != nil {
		return nil, err
	}

	if rsdp.Revision >= 2 {
		if len(data) < ExtRSDPSize {
			return nil, errTruncatedRSDP
		}

		_ = binary.Read(bytes.NewReader(data[:ExtRSDPSize]), binary.LittleEndian, &rsdp)

		if err := ValidateChecksum(data[:ExtRSDPSize]); err != nil {
			return nil, err
		}
	}

	return &rsdp, nil
}

// ParseSDTHeader decodes the common system descriptor table header from the
// start of data. The header's length field may exceed len(data); callers that
// only mapped the header use it to establish how much more to map.
func ParseSDTHeader(data []byte) (*SDTHeader, *Error) {
	if len(data) < HeaderSize {
		return nil, errTruncatedHeader
	}

	var header SDTHeader
	_ = binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &header)

	if header.Length < HeaderSize {
		return nil, errBadTableLength
	}

	return &header, nil
}

// ValidateChecksum returns an error unless the sum of all bytes in data is
// zero mod 256.
func ValidateChecksum(data []byte) *Error {
	var sum uint8
	for _, b := range data {
		sum += b
	}

	if sum != 0 {
		return errChecksumMismatch
	}

	return nil
}

// The offsets into the FADT of the fields that point at the DSDT. The 32-bit
// Dsdt pointer follows right after the FirmwareCtrl field; X_Dsdt belongs to
// the 64-bit extension block introduced with ACPI 2.0.
const (
	fadtDsdtOffset  = 40
	fadtXDsdtOffset = 140
)

// DSDTAddress extracts the physical address of the DSDT from a mapped FADT,
// preferring the 64-bit X_Dsdt field when it is present and non-zero.
func DSDTAddress(fadt []byte) (uint64, *Error) {
	if len(fadt) >= fadtXDsdtOffset+8 {
		if addr := binary.LittleEndian.Uint64(fadt[fadtXDsdtOffset:]); addr != 0 {
			return addr, nil
		}
	}

	if len(fadt) >= fadtDsdtOffset+4 {
		if addr := binary.LittleEndian.Uint32(fadt[fadtDsdtOffset:]); addr != 0 {
			return uint64(addr), nil
		}
	}

	return 0, errMissingDSDT
}
