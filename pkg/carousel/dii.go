package carousel

// processInfo implements §4.6.1's DII (message_id 0x1002, Download Info
// Indication) handling. body is the message body starting at bodyOffset
// within the section: download_id, block_size, a handful of download-
// window fields this core does not act on, a compatibility descriptor,
// then the module list.
func (a *Assembler) processInfo(body []byte) error {
	const fixedHeaderLen = 16 // download_id(4) + block_size(2) + 6 reserved + tc_download_scenario(4)
	if len(body) < fixedHeaderLen+2 {
		return ErrShortSection
	}

	downloadID := uint32(body[0])<<24 | uint32(body[1])<<16 | uint32(body[2])<<8 | uint32(body[3])
	blockSize := uint16(body[4])<<8 | uint16(body[5])

	off := fixedHeaderLen
	descLen := int(uint16(body[off])<<8 | uint16(body[off+1]))
	off += 2
	if off+descLen > len(body) {
		return ErrShortSection
	}
	off += descLen // compatibility descriptor content is not consumed further

	if off+2 > len(body) {
		return ErrShortSection
	}
	numModules := int(uint16(body[off])<<8 | uint16(body[off+1]))
	off += 2

	car := a.registry.FindByID(downloadID)
	if car == nil {
		// A DII for a carousel the gateway hasn't announced yet; drop per
		// §4.6.1 ("no matching carousel: drop").
		a.metrics.IncSectionsDropped("dii_unknown_carousel")
		return ErrUnknownCarousel
	}

	for i := 0; i < numModules; i++ {
		if off+8 > len(body) {
			return ErrShortSection
		}
		moduleID := uint16(body[off])<<8 | uint16(body[off+1])
		moduleSize := uint32(body[off+2])<<24 | uint32(body[off+3])<<16 | uint32(body[off+4])<<8 | uint32(body[off+5])
		moduleVersion := body[off+6]
		moduleInfoLen := int(body[off+7])
		off += 8

		if off+moduleInfoLen > len(body) {
			return ErrShortSection
		}
		info, _, err := parseModuleInfo(body[off : off+moduleInfoLen])
		if err != nil {
			return err
		}
		off += moduleInfoLen

		a.addModuleInfo(car, moduleID, moduleVersion, moduleSize, blockSize, info)
	}

	a.metrics.IncSectionsProcessed("dii")
	return nil
}

// addModuleInfo implements §4.6.1's add_module_info: a version match
// leaves an in-progress record untouched, a version change drops the
// stale record and starts fresh, and no match appends a new record. Any
// newly-seen module queues a stream subscription request for its
// association tag.
func (a *Assembler) addModuleInfo(car *Carousel, moduleID uint16, version uint8, size uint32, blockSize uint16, info ModuleInfo) {
	existing := car.findModule(moduleID)
	switch {
	case existing != nil && existing.Version == version:
		return
	case existing != nil:
		car.dropModule(moduleID)
	}

	rec := newModuleRecord(moduleID, version, size, blockSize, info.AssocTag, info.Descriptors)
	car.modules = append(car.modules, rec)
	a.subscription.Add(car.ID, info.AssocTag)
}
