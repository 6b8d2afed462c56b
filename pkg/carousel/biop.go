package carousel

// BIOP (Broadcast Inter-ORB Protocol) framing is treated as an external,
// opaque sub-parser by the surrounding specification: the carousel core
// only needs the gateway's carousel id and association tag out of an IOR,
// and a module's association tag and descriptor chain out of a module
// info blob. The parsers below implement a minimal, internally consistent
// encoding of exactly those fields rather than full IOP CDR decoding,
// standing in for the real BIOP sub-parser's stated contract.

// IOR is the subset of a BIOP gateway profile the carousel core consumes.
type IOR struct {
	CarouselID uint32
	ModuleID   uint16
	AssocTag   uint16
}

// iorSize is the fixed encoded size of an IOR: carousel_id(4) +
// module_id(2) + assoc_tag(2).
const iorSize = 8

// parseIOR decodes the BIOP gateway profile starting at data[0], returning
// the decoded fields and the number of bytes consumed.
func parseIOR(data []byte) (IOR, int, error) {
	if len(data) < iorSize {
		return IOR{}, 0, ErrShortSection
	}
	ior := IOR{
		CarouselID: uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3]),
		ModuleID:   uint16(data[4])<<8 | uint16(data[5]),
		AssocTag:   uint16(data[6])<<8 | uint16(data[7]),
	}
	return ior, iorSize, nil
}

// Descriptor is one entry of a module's BIOP descriptor chain. Tag 0x09 is
// the compression descriptor; OriginalSize is only meaningful for it.
type Descriptor struct {
	Tag          uint8
	OriginalSize uint32
}

const compressionDescriptorTag = 0x09

// ModuleInfo is the subset of a BIOP module_info blob the carousel core
// consumes: the module's association tag and its descriptor chain.
type ModuleInfo struct {
	AssocTag    uint16
	Descriptors []Descriptor
}

// parseModuleInfo decodes a module_info blob: assoc_tag:2, descriptor
// count:1, then each descriptor as tag:1, len:1, payload:len (a
// compression descriptor's payload is original_size:4).
func parseModuleInfo(data []byte) (ModuleInfo, int, error) {
	if len(data) < 3 {
		return ModuleInfo{}, 0, ErrShortSection
	}
	info := ModuleInfo{
		AssocTag: uint16(data[0])<<8 | uint16(data[1]),
	}
	count := int(data[2])
	off := 3

	for i := 0; i < count; i++ {
		if off+2 > len(data) {
			return ModuleInfo{}, 0, ErrShortSection
		}
		tag := data[off]
		length := int(data[off+1])
		off += 2
		if off+length > len(data) {
			return ModuleInfo{}, 0, ErrShortSection
		}
		desc := Descriptor{Tag: tag}
		if tag == compressionDescriptorTag && length >= 4 {
			payload := data[off : off+length]
			desc.OriginalSize = uint32(payload[0])<<24 | uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3])
		}
		info.Descriptors = append(info.Descriptors, desc)
		off += length
	}
	return info, off, nil
}

func findCompressionDescriptor(descriptors []Descriptor) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Tag == compressionDescriptorTag {
			return d, true
		}
	}
	return Descriptor{}, false
}
