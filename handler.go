package acpi

// Handler supplies the platform capabilities that the ACPI driver needs but
// cannot implement itself: mapping and unmapping regions of physical memory.
// The host (kernel, bootloader or test harness) provides an implementation
// that matches its memory management scheme.
type Handler interface {
	// MapPhysicalRegion maps size bytes of physical memory starting at
	// physAddr and returns an accessor for the mapped region. The mapped
	// region may be larger than requested (e.g. rounded out to page
	// boundaries) but the accessor must expose at least size bytes.
	MapPhysicalRegion(physAddr uint64, size uint32) (*PhysicalMapping, *Error)

	// UnmapPhysicalRegion releases a mapping previously returned by
	// MapPhysicalRegion. It is invoked exactly once per mapping, when the
	// mapping is closed.
	UnmapPhysicalRegion(mapping *PhysicalMapping)
}

// PhysicalMapping describes a region of physical memory mapped by a Handler.
// Each mapping is exclusively owned by the code that created it and must be
// released with Close on every exit path.
type PhysicalMapping struct {
	// PhysicalStart is the physical address at which the region begins.
	PhysicalStart uint64

	// Data exposes the mapped bytes. The slice must not be accessed after
	// the mapping is closed.
	Data []byte

	// RegionLength is the number of bytes that were requested.
	// MappedLength can be larger if the handler had to round the mapping
	// out for alignment.
	RegionLength uint32
	MappedLength uint32

	handler Handler
	closed  bool
}

// NewPhysicalMapping wraps a region mapped by handler into a PhysicalMapping.
// Handler implementations call this from MapPhysicalRegion.
func NewPhysicalMapping(handler Handler, physicalStart uint64, data []byte, regionLength, mappedLength uint32) *PhysicalMapping {
	return &PhysicalMapping{
		PhysicalStart: physicalStart,
		Data:          data,
		RegionLength:  regionLength,
		MappedLength:  mappedLength,
		handler:       handler,
	}
}

// Close releases the mapping via the handler that created it. Calling Close
// more than once is safe; the underlying unmap happens only on the first
// call.
func (m *PhysicalMapping) Close() {
	if m.closed || m.handler == nil {
		return
	}

	m.closed = true
	m.handler.UnmapPhysicalRegion(m)
	m.Data = nil
}
