package memstore

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// FileCache is a carousel.ObjectCacheSink writing each assembled module to
// baseDir/<carousel_id>/<module_id>.bin, the file-domain equivalent of the
// teacher's DomainObjectExample block-transfer write (extension_example.go).
type FileCache struct {
	baseDir string
	log     log.FieldLogger
}

// NewFileCache returns a sink rooted at baseDir, creating it if necessary.
func NewFileCache(baseDir string, logger log.FieldLogger) (*FileCache, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("memstore: creating cache dir %s: %w", baseDir, err)
	}
	return &FileCache{baseDir: baseDir, log: logger}, nil
}

// Store implements carousel.ObjectCacheSink.
func (f *FileCache) Store(carouselID uint32, moduleID uint16, data []byte) error {
	dir := filepath.Join(f.baseDir, fmt.Sprintf("%08x", carouselID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("%04x.bin", moduleID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	f.log.Infof("[CAROUSEL][CACHE] wrote %s (%d bytes)", path, len(data))
	return nil
}
