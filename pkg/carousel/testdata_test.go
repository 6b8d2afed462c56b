package carousel

import "github.com/dvbstreamer/control/internal/crc"

// buildSection appends a big-endian CRC32/MPEG-2 trailer to payload and
// patches the 12-bit section_length field (bytes 1-2) to cover everything
// from byte 3 through the trailer, mirroring how a real PSI section is
// assembled before transmission.
func buildSection(payload []byte) []byte {
	buf := make([]byte, len(payload))
	copy(buf, payload)

	length := len(buf) - 3 + 4 // bytes after the length field, plus the trailer
	buf[1] = (buf[1] & 0xF0) | byte(length>>8&0x0F)
	buf[2] = byte(length)

	c := crc.NewCRC32()
	c.Block(buf)
	trailer := uint32(c)
	buf = append(buf, byte(trailer>>24), byte(trailer>>16), byte(trailer>>8), byte(trailer))
	return buf
}

// sectionHeaderBytes returns a minimal valid 8-byte MPEG-2 private section
// header: section_syntax_indicator set, private_indicator clear.
func sectionHeaderBytes(tableID uint8, tableIDExtension uint16) []byte {
	return []byte{
		tableID,
		0x80, 0x00, // flags0 (syntax=1, private=0), length placeholder low nibble
		byte(tableIDExtension >> 8), byte(tableIDExtension),
		0x00, // flags2
		0x00, 0x00, // section_number, last_section_number
	}
}

// msgHeaderBytes builds the 12-byte DSM-CC message header.
func msgHeaderBytes(messageID uint16, transactionOrDownloadID uint32, messageLen uint16) []byte {
	return []byte{
		0x11, 0x03, // protocol, type
		byte(messageID >> 8), byte(messageID),
		byte(transactionOrDownloadID >> 24), byte(transactionOrDownloadID >> 16),
		byte(transactionOrDownloadID >> 8), byte(transactionOrDownloadID),
		0x00,       // reserved
		0x00,       // adaptation_length
		byte(messageLen >> 8), byte(messageLen),
	}
}

// iorBytes encodes a stub BIOP IOR: carousel_id, module_id, assoc_tag.
func iorBytes(carouselID uint32, moduleID, assocTag uint16) []byte {
	return []byte{
		byte(carouselID >> 24), byte(carouselID >> 16), byte(carouselID >> 8), byte(carouselID),
		byte(moduleID >> 8), byte(moduleID),
		byte(assocTag >> 8), byte(assocTag),
	}
}

// dsiBody builds a DSI body: 20 bytes of server id, a 2-byte compatibility
// descriptor length (0), data_len:2 (0), then the IOR.
func dsiBody(ior []byte) []byte {
	body := make([]byte, dsiBiopOffset)
	body = append(body, ior...)
	return body
}

// buildDSISection assembles a complete, CRC-valid DSI section.
func buildDSISection(transactionID uint32, ior []byte) []byte {
	body := dsiBody(ior)
	msg := msgHeaderBytes(msgIDServerGateway, transactionID, uint16(len(body)))
	payload := append(sectionHeaderBytes(0x3B, 0), msg...)
	payload = append(payload, body...)
	return buildSection(payload)
}

// moduleInfoBytes encodes a BIOP module_info blob with the given
// association tag and descriptors.
func moduleInfoBytes(assocTag uint16, descriptors [][]byte) []byte {
	buf := []byte{byte(assocTag >> 8), byte(assocTag), byte(len(descriptors))}
	for _, d := range descriptors {
		buf = append(buf, d...)
	}
	return buf
}

// compressionDescriptorBytes encodes a tag-0x09 descriptor with the given
// original (decompressed) size.
func compressionDescriptorBytes(originalSize uint32) []byte {
	return []byte{
		compressionDescriptorTag, 4,
		byte(originalSize >> 24), byte(originalSize >> 16), byte(originalSize >> 8), byte(originalSize),
	}
}

// diiModuleEntry encodes one DII module-list entry.
func diiModuleEntry(moduleID uint16, moduleSize uint32, version uint8, info []byte) []byte {
	return append([]byte{
		byte(moduleID >> 8), byte(moduleID),
		byte(moduleSize >> 24), byte(moduleSize >> 16), byte(moduleSize >> 8), byte(moduleSize),
		version, byte(len(info)),
	}, info...)
}

// buildDIISection assembles a complete, CRC-valid DII section.
func buildDIISection(downloadID uint32, blockSize uint16, modules []byte, numModules int) []byte {
	body := make([]byte, 0, 18+len(modules))
	body = append(body,
		byte(downloadID>>24), byte(downloadID>>16), byte(downloadID>>8), byte(downloadID),
		byte(blockSize>>8), byte(blockSize),
		0, 0, 0, 0, 0, 0, // windowSize, ack, tCDownloadWindow(4)
		0, 0, 0, 0, // tc_download_scenario
		0, 0, // compatibility descriptor length
	)
	body = append(body, byte(numModules>>8), byte(numModules))
	body = append(body, modules...)

	msg := msgHeaderBytes(msgIDDownloadInfo, downloadID, uint16(len(body)))
	payload := append(sectionHeaderBytes(0x3B, 0), msg...)
	payload = append(payload, body...)
	return buildSection(payload)
}

// buildDDBSection assembles a complete, CRC-valid DDB section carrying one
// block of a module.
func buildDDBSection(downloadID uint32, moduleID uint16, version uint8, blockNumber uint16, payload []byte) []byte {
	block := []byte{
		byte(moduleID >> 8), byte(moduleID),
		version,
		0x00, // reserved
		byte(blockNumber >> 8), byte(blockNumber),
	}
	block = append(block, payload...)

	msg := msgHeaderBytes(0, downloadID, uint16(len(block)))
	section := append(sectionHeaderBytes(0x3C, 0), msg...)
	section = append(section, block...)
	return buildSection(section)
}
