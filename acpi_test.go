package acpi

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/rcerc/acpi/table"
)

// mockHandler serves physical mapping requests out of a flat byte slice that
// stands in for physical memory. It counts the map/unmap calls so tests can
// assert that the driver releases every mapping it creates.
type mockHandler struct {
	mem    []byte
	maps   int
	unmaps int
}

func (h *mockHandler) MapPhysicalRegion(physAddr uint64, size uint32) (*PhysicalMapping, *Error) {
	end := physAddr + uint64(size)
	if end > uint64(len(h.mem)) {
		return nil, &Error{Module: "acpi_test", Message: "mapping request outside the emulated memory range"}
	}

	h.maps++
	return NewPhysicalMapping(h, physAddr, h.mem[physAddr:end], size, size), nil
}

func (h *mockHandler) UnmapPhysicalRegion(*PhysicalMapping) {
	h.unmaps++
}

// The physical layout used by the driver tests. All tables live inside a
// 2M emulated memory image; the RSDP sits in the BIOS extended region on a
// 16-byte boundary, where firmware is required to place it.
const (
	mockMemSize  = 0x200000
	mockRSDPAddr = 0xe0010
	mockRSDTAddr = 0x100000
	mockFADTAddr = 0x110000
	mockSSDTAddr = 0x120000
	mockDSDTAddr = 0x130000
	mockBadAddr  = 0x140000
)

func patchChecksum(data []byte, checksumOffset int) {
	data[checksumOffset] = 0

	var sum uint8
	for _, b := range data {
		sum += b
	}

	data[checksumOffset] = -sum
}

// writeSDT emits an ACPI table with a valid header and checksum at addr and
// returns its total length.
func writeSDT(mem []byte, addr uint64, signature string, payload []byte) uint32 {
	length := uint32(table.HeaderSize + len(payload))
	data := mem[addr : addr+uint64(length)]

	copy(data, signature)
	binary.LittleEndian.PutUint32(data[4:], length)
	data[8] = 2
	copy(data[10:], "OEMID_")
	copy(data[16:], "OEMTBLID")
	copy(data[table.HeaderSize:], payload)
	patchChecksum(data, 9)

	return length
}

func writeRSDP(mem []byte, addr uint64, revision uint8, rsdtAddr uint32, xsdtAddr uint64) {
	data := mem[addr : addr+table.ExtRSDPSize]

	copy(data, table.RSDPSignature[:])
	copy(data[9:], "OEMID_")
	data[15] = revision
	binary.LittleEndian.PutUint32(data[16:], rsdtAddr)

	if revision < 2 {
		patchChecksum(data[:table.RSDPSize], 8)
		return
	}

	binary.LittleEndian.PutUint32(data[20:], table.ExtRSDPSize)
	binary.LittleEndian.PutUint64(data[24:], xsdtAddr)
	patchChecksum(data[:table.RSDPSize], 8)
	patchChecksum(data, 32)
}

// mockACPIMemory assembles an emulated memory image containing an RSDP, a
// root table pointing at a FADT, an SSDT and a corrupted table, plus the DSDT
// referenced by the FADT.
//
// The DSDT declares Scope(_SB_) { OperationRegion(OPR1, SystemMemory, 0x10,
// 0x04) }; the SSDT declares OperationRegion(OPR9, SystemMemory, 0x20, 0x08)
// at the root.
func mockACPIMemory(useXSDT bool) []byte {
	mem := make([]byte, mockMemSize)

	dsdtAML := []byte{
		0x10, 0x10,
		'_', 'S', 'B', '_',
		0x5b, 0x80,
		'O', 'P', 'R', '1',
		0x00,
		0x0a, 0x10,
		0x0a, 0x04,
	}
	writeSDT(mem, mockDSDTAddr, "DSDT", dsdtAML)

	ssdtAML := []byte{
		0x5b, 0x80,
		'O', 'P', 'R', '9',
		0x00,
		0x0a, 0x20,
		0x0a, 0x08,
	}
	writeSDT(mem, mockSSDTAddr, "SSDT", ssdtAML)

	fadtPayload := make([]byte, 148-table.HeaderSize)
	binary.LittleEndian.PutUint64(fadtPayload[140-table.HeaderSize:], mockDSDTAddr)
	writeSDT(mem, mockFADTAddr, "FACP", fadtPayload)

	// A table whose checksum the driver must flag and skip.
	writeSDT(mem, mockBadAddr, "OEMX", nil)
	mem[mockBadAddr+table.HeaderSize-1]++

	sdtAddresses := []uint64{mockFADTAddr, mockSSDTAddr, mockBadAddr}
	if useXSDT {
		rootPayload := make([]byte, 8*len(sdtAddresses))
		for i, addr := range sdtAddresses {
			binary.LittleEndian.PutUint64(rootPayload[i*8:], addr)
		}
		writeSDT(mem, mockRSDTAddr, "XSDT", rootPayload)
		writeRSDP(mem, mockRSDPAddr, 2, 0, mockRSDTAddr)
	} else {
		rootPayload := make([]byte, 4*len(sdtAddresses))
		for i, addr := range sdtAddresses {
			binary.LittleEndian.PutUint32(rootPayload[i*4:], uint32(addr))
		}
		writeSDT(mem, mockRSDTAddr, "RSDT", rootPayload)
		writeRSDP(mem, mockRSDPAddr, 1, mockRSDTAddr, 0)
	}

	return mem
}

func TestDriverInit(t *testing.T) {
	for _, useXSDT := range []bool{false, true} {
		handler := &mockHandler{mem: mockACPIMemory(useXSDT)}
		drv := NewDriver(handler, mockRSDPAddr)

		var buf bytes.Buffer
		if err := drv.DriverInit(&buf); err != nil {
			t.Fatalf("[useXSDT %t] %v", useXSDT, err)
		}

		if drv.useXSDT != useXSDT {
			t.Errorf("[useXSDT %t] driver selected the wrong root table", useXSDT)
		}

		ns := drv.Namespace()

		val, ok := ns.Lookup(`\_SB_OPR1`)
		if !ok {
			t.Fatalf(`[useXSDT %t] expected namespace entry at \_SB_OPR1`, useXSDT)
		}
		if val.Region.Offset != 0x10 || val.Region.Length != 0x04 {
			t.Errorf("[useXSDT %t] unexpected region contents: %#+v", useXSDT, val.Region)
		}

		if _, ok = ns.Lookup(`\OPR9`); !ok {
			t.Fatalf(`[useXSDT %t] expected namespace entry at \OPR9`, useXSDT)
		}

		if !bytes.Contains(buf.Bytes(), []byte("checksum mismatch; skipping")) {
			t.Errorf("[useXSDT %t] expected the corrupted table to be reported:\n%s", useXSDT, buf.String())
		}

		if drv.LookupTable("FACP") == nil {
			t.Errorf("[useXSDT %t] expected the FADT to remain mapped", useXSDT)
		}
		if drv.LookupTable("OEMX") != nil {
			t.Errorf("[useXSDT %t] expected the corrupted table to be skipped", useXSDT)
		}

		drv.Close()

		if handler.maps != handler.unmaps {
			t.Errorf("[useXSDT %t] driver leaked %d mapping(s)", useXSDT, handler.maps-handler.unmaps)
		}
	}
}

func TestDriverInitMissingDSDT(t *testing.T) {
	mem := mockACPIMemory(false)

	// Rewrite the root table so it only references the SSDT; without a FADT
	// the driver has no way to locate the DSDT.
	rootPayload := make([]byte, 4)
	binary.LittleEndian.PutUint32(rootPayload, mockSSDTAddr)
	writeSDT(mem, mockRSDTAddr, "RSDT", rootPayload)

	handler := &mockHandler{mem: mem}
	drv := NewDriver(handler, mockRSDPAddr)
	defer drv.Close()

	var buf bytes.Buffer
	if err := drv.DriverInit(&buf); err != errMissingDSDT {
		t.Fatalf("expected errMissingDSDT; got %v", err)
	}
}

func TestDriverInitBadRSDP(t *testing.T) {
	mem := mockACPIMemory(false)
	mem[mockRSDPAddr+16]++

	handler := &mockHandler{mem: mem}
	drv := NewDriver(handler, mockRSDPAddr)

	var buf bytes.Buffer
	if err := drv.DriverInit(&buf); err != errMissingRSDP {
		t.Fatalf("expected errMissingRSDP; got %v", err)
	}

	if handler.maps != handler.unmaps {
		t.Errorf("driver leaked %d mapping(s)", handler.maps-handler.unmaps)
	}
}

func TestFindRSDP(t *testing.T) {
	handler := &mockHandler{mem: mockACPIMemory(false)}

	addr, err := FindRSDP(handler)
	if err != nil {
		t.Fatal(err)
	}

	if addr != mockRSDPAddr {
		t.Fatalf("expected FindRSDP to return %#x; got %#x", mockRSDPAddr, addr)
	}

	if handler.maps != handler.unmaps {
		t.Errorf("FindRSDP leaked %d mapping(s)", handler.maps-handler.unmaps)
	}

	t.Run("signature not present", func(t *testing.T) {
		handler := &mockHandler{mem: make([]byte, mockMemSize)}

		if _, err := FindRSDP(handler); err != errMissingRSDP {
			t.Fatalf("expected errMissingRSDP; got %v", err)
		}
	})
}

func TestDriverMetadata(t *testing.T) {
	drv := NewDriver(&mockHandler{}, 0)

	if got := drv.DriverName(); got != "ACPI" {
		t.Fatalf("unexpected driver name: %q", got)
	}

	if major, minor, patch := drv.DriverVersion(); major != 0 || minor != 0 || patch != 1 {
		t.Fatalf("unexpected driver version: %d.%d.%d", major, minor, patch)
	}
}

func TestPhysicalMappingClose(t *testing.T) {
	handler := &mockHandler{mem: make([]byte, 64)}

	mapping, err := handler.MapPhysicalRegion(0, 64)
	if err != nil {
		t.Fatal(err)
	}

	mapping.Close()
	mapping.Close()

	if handler.unmaps != 1 {
		t.Fatalf("expected exactly one unmap call; got %d", handler.unmaps)
	}

	if mapping.Data != nil {
		t.Fatal("expected the mapped data to be released on close")
	}
}
