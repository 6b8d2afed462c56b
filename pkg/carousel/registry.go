package carousel

// MaxCarousels is the compile-time cap on concurrently tracked carousels
// (§4.5: "a compile-time constant; typical value small, e.g. 8").
const MaxCarousels = 8

// ObjectCacheSink receives a fully assembled, possibly decompressed
// module. It stands in for the external BIOP file-cache object §4.6.2
// hands completed modules to.
type ObjectCacheSink interface {
	Store(carouselID uint32, moduleID uint16, data []byte) error
}

// Carousel is per-carousel state: an id (0 meaning unassigned), an
// optional gateway profile, and its module cache.
type Carousel struct {
	ID      uint32
	Gateway *IOR
	modules []*ModuleRecord

	allocated bool // true once this slot has been claimed, even if ID is still 0
}

func (c *Carousel) findModule(moduleID uint16) *ModuleRecord {
	for _, m := range c.modules {
		if m.ModuleID == moduleID {
			return m
		}
	}
	return nil
}

func (c *Carousel) dropModule(moduleID uint16) {
	for i, m := range c.modules {
		if m.ModuleID == moduleID {
			c.modules = append(c.modules[:i], c.modules[i+1:]...)
			return
		}
	}
}

// Registry holds exactly MaxCarousels pre-allocated entries, per §4.5.
// There is no eviction; versioning lives inside ModuleAssembler.
type Registry struct {
	carousels [MaxCarousels]Carousel
}

// NewRegistry returns a registry with every slot pre-allocated and id=0.
func NewRegistry() *Registry {
	return &Registry{}
}

// FindByID linearly scans for the carousel whose id matches, else nil.
func (r *Registry) FindByID(carouselID uint32) *Carousel {
	if carouselID == 0 {
		return nil
	}
	for i := range r.carousels {
		if r.carousels[i].ID == carouselID {
			return &r.carousels[i]
		}
	}
	return nil
}

// AllocateFor claims the first unallocated slot and returns it, used when
// the gateway assigns a new carousel id. carouselID may be 0 when the id
// is not yet known (the DSI's own IOR supplies it later); the slot is
// still marked allocated so a second unresolved bootstrap does not reuse
// it. Returns ErrRegistryFull if every slot is occupied.
func (r *Registry) AllocateFor(carouselID uint32) (*Carousel, error) {
	for i := range r.carousels {
		if !r.carousels[i].allocated {
			r.carousels[i].allocated = true
			r.carousels[i].ID = carouselID
			return &r.carousels[i], nil
		}
	}
	return nil, ErrRegistryFull
}

// FindOrAllocate returns the carousel matching carouselID, allocating a
// fresh slot if none exists yet — used when a DSI references a carousel
// id the registry has not seen before. A DII for an unknown id is dropped
// instead (it only looks the carousel up with FindByID).
func (r *Registry) FindOrAllocate(carouselID uint32) (*Carousel, error) {
	if c := r.FindByID(carouselID); c != nil {
		return c, nil
	}
	return r.AllocateFor(carouselID)
}
