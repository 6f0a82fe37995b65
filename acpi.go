// Package acpi implements a driver that discovers the ACPI tables exposed by
// the platform firmware and decodes their AML payloads into a namespace of
// typed objects. The platform supplies physical memory access through the
// Handler capability; the driver owns every mapping it creates and releases
// them all when it is closed.
package acpi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rcerc/acpi/aml"
	"github.com/rcerc/acpi/table"
)

const (
	acpiRev1     uint8 = 0
	acpiRev2Plus uint8 = 2

	fadtSignature = "FACP"
	dsdtSignature = "DSDT"
	ssdtSignature = "SSDT"
)

// Error describes errors returned by the ACPI driver.
type Error struct {
	Module  string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Module + ": " + e.Message
}

var (
	errMissingRSDP           = &Error{Module: "acpi", Message: "could not locate ACPI RSDP"}
	errMissingDSDT           = &Error{Module: "acpi", Message: "could not locate DSDT"}
	errTableChecksumMismatch = &Error{Module: "acpi", Message: "detected checksum mismatch while parsing ACPI table header"}

	// RSDP must be located in the physical memory region 0xe0000 to 0xfffff
	// on a 16-byte boundary.
	rsdpLocationLow uint64 = 0xe0000
	rsdpLocationHi  uint64 = 0xfffff
	rsdpAlignment   uint64 = 16
)

// Driver discovers the ACPI tables exposed by the platform firmware and
// parses the AML definition blocks they contain.
type Driver struct {
	handler  Handler
	rsdpAddr uint64

	// useXSDT specifies if the driver must use the XSDT or the RSDT table.
	useXSDT bool

	// tableMap allows the driver to look up a mapped ACPI table by name.
	// All tables included in this map remain mapped until the driver is
	// closed.
	tableMap map[string]*PhysicalMapping

	namespace *aml.Namespace
}

// NewDriver returns a driver that reads the ACPI data anchored at the RSDP
// located at rsdpAddr. Callers that do not know the RSDP location can scan
// for it with FindRSDP.
func NewDriver(handler Handler, rsdpAddr uint64) *Driver {
	return &Driver{
		handler:   handler,
		rsdpAddr:  rsdpAddr,
		namespace: aml.NewNamespace(),
	}
}

// DriverName returns the name of this driver.
func (*Driver) DriverName() string {
	return "ACPI"
}

// DriverVersion returns the version of this driver.
func (*Driver) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit enumerates the ACPI tables reachable from the RSDP and parses
// the AML definition blocks (DSDT plus any SSDT) into the driver namespace.
// Diagnostic output is emitted to the supplied writer.
func (drv *Driver) DriverInit(w io.Writer) *Error {
	if err := drv.enumerateTables(w); err != nil {
		return err
	}

	drv.printTableInfo(w)

	return drv.parseDefinitionBlocks(w)
}

// Namespace returns the namespace populated by DriverInit.
func (drv *Driver) Namespace() *aml.Namespace {
	return drv.namespace
}

// LookupTable implements table.Resolver, returning the full contents of a
// mapped table by name or nil if the table is not present.
func (drv *Driver) LookupTable(name string) []byte {
	mapping, ok := drv.tableMap[name]
	if !ok {
		return nil
	}

	return mapping.Data
}

// Close unmaps every table mapping created during enumeration. The byte
// slices returned by LookupTable must not be used after Close returns.
func (drv *Driver) Close() {
	for _, mapping := range drv.tableMap {
		mapping.Close()
	}

	drv.tableMap = nil
}

// enumerateTables discovers and maps all ACPI tables that are present.
// Besides the table list referenced by the RSDT/XSDT, this method also peeks
// into the FADT (if found) looking for the address of the DSDT.
func (drv *Driver) enumerateTables(w io.Writer) *Error {
	rsdpMapping, err := drv.handler.MapPhysicalRegion(drv.rsdpAddr, table.ExtRSDPSize)
	if err != nil {
		return err
	}
	defer rsdpMapping.Close()

	rsdp, terr := table.ParseRSDP(rsdpMapping.Data)
	if terr != nil {
		fmt.Fprintf(w, "%s\n", terr.Message)
		return errMissingRSDP
	}

	drv.useXSDT = rsdp.Revision >= acpiRev2Plus && rsdp.XSDTAddr != 0

	var sdtAddr uint64
	if drv.useXSDT {
		sdtAddr = rsdp.XSDTAddr
	} else {
		sdtAddr = uint64(rsdp.RSDTAddr)
	}

	rootMapping, rootHeader, err := drv.mapACPITable(sdtAddr)
	if err != nil {
		return err
	}
	defer rootMapping.Close()

	drv.tableMap = make(map[string]*PhysicalMapping)

	// RSDT uses 4-byte long pointers whereas the XSDT uses 8-byte long.
	payload := rootMapping.Data[table.HeaderSize:rootHeader.Length]

	var sdtAddresses []uint64
	switch drv.useXSDT {
	case true:
		for off := 0; off+8 <= len(payload); off += 8 {
			sdtAddresses = append(sdtAddresses, binary.LittleEndian.Uint64(payload[off:]))
		}
	default:
		for off := 0; off+4 <= len(payload); off += 4 {
			sdtAddresses = append(sdtAddresses, uint64(binary.LittleEndian.Uint32(payload[off:])))
		}
	}

	for _, addr := range sdtAddresses {
		mapping, header, err := drv.mapACPITable(addr)
		if err != nil {
			if err == errTableChecksumMismatch && header != nil {
				fmt.Fprintf(w, "%s at 0x%16x %6x [checksum mismatch; skipping]\n",
					string(header.Signature[:]),
					addr,
					header.Length,
				)
				continue
			}

			return err
		}

		drv.tableMap[string(header.Signature[:])] = mapping
	}

	// The DSDT is not part of the RSDT/XSDT list; its address is stored
	// in the FADT.
	if fadt := drv.LookupTable(fadtSignature); fadt != nil {
		dsdtAddr, terr := table.DSDTAddress(fadt)
		if terr != nil {
			fmt.Fprintf(w, "%s\n", terr.Message)
			return nil
		}

		mapping, header, err := drv.mapACPITable(dsdtAddr)
		if err != nil {
			return err
		}

		drv.tableMap[string(header.Signature[:])] = mapping
	}

	return nil
}

// mapACPITable maps the table located at addr. The common header is mapped
// first to obtain the table length and the mapping is then redone to cover
// the table's full extent before validating its checksum. On a checksum
// mismatch the parsed header is still returned so the caller can identify
// the offending table.
func (drv *Driver) mapACPITable(addr uint64) (*PhysicalMapping, *table.SDTHeader, *Error) {
	headerMapping, err := drv.handler.MapPhysicalRegion(addr, table.HeaderSize)
	if err != nil {
		return nil, nil, err
	}

	header, terr := table.ParseSDTHeader(headerMapping.Data)
	headerMapping.Close()
	if terr != nil {
		return nil, nil, &Error{Module: "acpi", Message: terr.Message}
	}

	mapping, err := drv.handler.MapPhysicalRegion(addr, header.Length)
	if err != nil {
		return nil, nil, err
	}
	mapping.Data = mapping.Data[:header.Length]

	if terr = table.ValidateChecksum(mapping.Data); terr != nil {
		mapping.Close()
		return nil, header, errTableChecksumMismatch
	}

	return mapping, header, nil
}

func (drv *Driver) printTableInfo(w io.Writer) {
	for name, mapping := range drv.tableMap {
		header, terr := table.ParseSDTHeader(mapping.Data)
		if terr != nil {
			continue
		}

		fmt.Fprintf(w, "%s at 0x%16x %6x (%6s %8s)\n",
			name,
			mapping.PhysicalStart,
			header.Length,
			string(header.OEMID[:]),
			string(header.OEMTableID[:]),
		)
	}
}

// parseDefinitionBlocks feeds the AML payload of the DSDT and any SSDT into
// the AML parser starting at the namespace root.
func (drv *Driver) parseDefinitionBlocks(w io.Writer) *Error {
	if drv.LookupTable(dsdtSignature) == nil {
		return errMissingDSDT
	}

	parser := aml.NewParser(w, drv.namespace)

	for _, name := range []string{dsdtSignature, ssdtSignature} {
		data := drv.LookupTable(name)
		if data == nil {
			continue
		}

		if err := parser.ParseTable(name, `\`, data[table.HeaderSize:]); err != nil {
			return &Error{Module: "acpi", Message: err.Error()}
		}
	}

	return nil
}

// FindRSDP scans the BIOS extended memory region (0xe0000 - 0xfffff) for the
// RSDP signature and returns the physical address it was found at. The RSDP
// is always aligned on a 16-byte boundary.
func FindRSDP(handler Handler) (uint64, *Error) {
	mapping, err := handler.MapPhysicalRegion(rsdpLocationLow, uint32(rsdpLocationHi-rsdpLocationLow+1))
	if err != nil {
		return 0, err
	}
	defer mapping.Close()

	for off := uint64(0); off+8 <= uint64(len(mapping.Data)); off += rsdpAlignment {
		if bytes.Equal(mapping.Data[off:off+8], table.RSDPSignature[:]) {
			return rsdpLocationLow + off, nil
		}
	}

	return 0, errMissingRSDP
}
