package carousel

import (
	"bytes"
	"compress/zlib"
	"io"
)

// ddbBlockHeaderLen is module_id(2) + module_version(1) + reserved(1) +
// block_number(2) preceding a DDB's payload.
const ddbBlockHeaderLen = 6

// processData implements §4.6.2's DDB (Download Data Block) handling:
// locate the carousel and module the block belongs to, apply the drop
// rules, insert the block, and on completion assemble, decompress and
// hand the module to the object-cache sink.
func (a *Assembler) processData(data []byte) error {
	dh, err := parseDataHeader(data[dataHeaderOffset:])
	if err != nil {
		return err
	}

	car := a.registry.FindByID(dh.downloadID)
	if car == nil {
		a.metrics.IncSectionsDropped("ddb_unknown_carousel")
		return ErrUnknownCarousel
	}

	blk := data[ddbOffset:]
	if len(blk) < ddbBlockHeaderLen {
		return ErrShortSection
	}
	moduleID := uint16(blk[0])<<8 | uint16(blk[1])
	moduleVersion := blk[2]
	blockNumber := uint16(blk[4])<<8 | uint16(blk[5])

	blockLen := int(dh.messageLen) - ddbBlockHeaderLen
	if blockLen < 0 || ddbBlockHeaderLen+blockLen > len(blk) {
		return ErrShortSection
	}
	payload := blk[ddbBlockHeaderLen : ddbBlockHeaderLen+blockLen]

	rec := car.findModule(moduleID)
	if rec == nil {
		a.metrics.IncSectionsDropped("ddb_unknown_module")
		return ErrUnknownModule
	}
	if rec.Cached() || rec.Version != moduleVersion {
		// A cached module has already been delivered; a version mismatch
		// means a DII for the new version hasn't arrived yet. Both are
		// drop-and-wait per §4.6.2.
		a.metrics.IncSectionsDropped("ddb_stale")
		return nil
	}

	if !rec.insertBlock(blockNumber, payload) {
		// Duplicate block, already accounted for.
		a.metrics.IncSectionsDropped("ddb_duplicate")
		return nil
	}

	a.metrics.IncSectionsProcessed("ddb")

	if !rec.Complete() {
		return nil
	}

	assembled := rec.assemble()
	if desc, ok := findCompressionDescriptor(rec.Descriptors); ok {
		out, derr := decompressModule(assembled, desc)
		if derr != nil {
			a.metrics.IncSectionsDropped("ddb_decompress_failed")
			car.dropModule(moduleID)
			return ErrDecompressionFailed
		}
		assembled = out
	}

	rec.data = assembled
	rec.cached = true
	a.metrics.IncModulesAssembled()

	if a.sink != nil {
		return a.sink.Store(car.ID, moduleID, assembled)
	}
	return nil
}

// decompressModule inflates a zlib-compressed module, the direct
// semantic match for the descriptor's stated "uncompress" contract.
func decompressModule(compressed []byte, desc Descriptor) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var cap int
	if desc.OriginalSize > 0 {
		cap = int(desc.OriginalSize)
	}
	buf := bytes.NewBuffer(make([]byte, 0, cap))
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
