package carousel

// block is one received DDB fragment, held in an ordered list keyed by
// block number until the module completes.
type block struct {
	number uint16
	data   []byte
}

// ModuleRecord is keyed by (carousel_id, module_id), tracking everything
// needed to reassemble one module version: the declared size, a
// dedup/completion bitmap, an ordered block list, and — once complete —
// the assembled (and possibly decompressed) byte buffer.
type ModuleRecord struct {
	ModuleID  uint16
	Version   uint8
	Size      uint32
	BlockSize uint16

	curp    uint32
	bitmap  []byte
	blocks  []block // kept ordered by ascending block number
	data    []byte
	cached  bool

	Descriptors    []Descriptor
	AssociationTag uint16
}

// newModuleRecord allocates a record sized for size/blockSize bytes, with
// a zeroed bitmap of numBlocks/8+1 bytes (always at least one byte, and
// never fewer than ceil(numBlocks/8)), per §4.6.1's add_module_info.
func newModuleRecord(moduleID uint16, version uint8, size uint32, blockSize uint16, assocTag uint16, descriptors []Descriptor) *ModuleRecord {
	numBlocks := 0
	if blockSize > 0 {
		numBlocks = int(size) / int(blockSize)
		if int(size)%int(blockSize) != 0 {
			numBlocks++
		}
	}
	return &ModuleRecord{
		ModuleID:       moduleID,
		Version:        version,
		Size:           size,
		BlockSize:      blockSize,
		bitmap:         make([]byte, numBlocks/8+1),
		Descriptors:    descriptors,
		AssociationTag: assocTag,
	}
}

func (m *ModuleRecord) blockGot(n uint16) bool {
	idx := int(n) / 8
	if idx >= len(m.bitmap) {
		return false
	}
	return m.bitmap[idx]&(1<<(uint(n)%8)) != 0
}

func (m *ModuleRecord) blockSet(n uint16) {
	idx := int(n) / 8
	if idx >= len(m.bitmap) {
		return
	}
	m.bitmap[idx] |= 1 << (uint(n) % 8)
}

// Complete reports whether every declared byte has been received.
func (m *ModuleRecord) Complete() bool {
	return m.curp >= m.Size
}

// Cached reports whether the module has been fully assembled and handed
// off to the object-cache sink.
func (m *ModuleRecord) Cached() bool {
	return m.cached
}

// Data returns the assembled (and, if applicable, decompressed) payload.
// Only meaningful once Cached() is true.
func (m *ModuleRecord) Data() []byte {
	return m.data
}

// insertBlock inserts payload at blockNumber into the ordered block list,
// deduplicating via the bitmap and updating curp, per §4.6.2 steps 3-4.
// Returns true if the block was newly accepted.
func (m *ModuleRecord) insertBlock(blockNumber uint16, payload []byte) bool {
	if m.blockGot(blockNumber) {
		return false
	}

	cp := make([]byte, len(payload))
	copy(cp, payload)
	b := block{number: blockNumber, data: cp}

	idx := 0
	for idx < len(m.blocks) && m.blocks[idx].number < blockNumber {
		idx++
	}
	m.blocks = append(m.blocks, block{})
	copy(m.blocks[idx+1:], m.blocks[idx:])
	m.blocks[idx] = b

	m.curp += uint32(len(payload))
	m.blockSet(blockNumber)
	return true
}

// assemble concatenates the ordered block list into one contiguous
// buffer and clears the block list, per §4.6.2's completion procedure.
func (m *ModuleRecord) assemble() []byte {
	buf := make([]byte, 0, m.Size)
	for _, b := range m.blocks {
		buf = append(buf, b.data...)
	}
	m.blocks = nil
	return buf
}
