package memstore

import "sync"

// FrontEnd is a static server.FrontEndStatus stand-in. A real deployment
// would read these values from the tuner driver; memstore just reports
// whatever was last set, defaulting to an unlocked, zeroed front end.
type FrontEnd struct {
	mu sync.Mutex

	ber, snr, strength, uncorrected, corrected uint32
	locked                                     bool
	frequency                                  uint32
	symbolRate, bandwidth                      uint16
}

// NewFrontEnd returns a zeroed, unlocked front end.
func NewFrontEnd() *FrontEnd {
	return &FrontEnd{}
}

// SetSignalStats updates the values STSS reports.
func (f *FrontEnd) SetSignalStats(ber, snr, strength, uncorrected, corrected uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ber, f.snr, f.strength, f.uncorrected, f.corrected = ber, snr, strength, uncorrected, corrected
}

// SetStatus updates the values SFES reports.
func (f *FrontEnd) SetStatus(locked bool, frequency uint32, symbolRate, bandwidth uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked, f.frequency, f.symbolRate, f.bandwidth = locked, frequency, symbolRate, bandwidth
}

func (f *FrontEnd) SignalStats() (ber, snr, strength, uncorrected, corrected uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ber, f.snr, f.strength, f.uncorrected, f.corrected
}

func (f *FrontEnd) Status() (locked bool, frequency uint32, symbolRate, bandwidth uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locked, f.frequency, f.symbolRate, f.bandwidth
}
