package carousel

// processGateway implements §4.6.1's DSI (message_id 0x1006, Server
// Gateway) handling. body is the message body starting at bodyOffset
// within the section (server id, compatibility descriptor length, data
// length, then the BIOP IOR).
func (a *Assembler) processGateway(carouselID uint32, body []byte) error {
	car, err := a.resolveGatewayCarousel(carouselID)
	if err != nil {
		return err
	}

	if car.Gateway != nil {
		// Future: handle gateway version change. For now a known gateway
		// is left untouched, per §4.6.1.
		return nil
	}

	if len(body) < dsiBiopOffset {
		return ErrShortSection
	}
	ior, _, err := parseIOR(body[dsiBiopOffset:])
	if err != nil {
		return err
	}

	if car.ID == 0 {
		car.ID = ior.CarouselID
	}
	car.Gateway = &ior

	a.subscription.Add(car.ID, ior.AssocTag)
	a.metrics.IncSectionsProcessed("dsi")
	return nil
}

// resolveGatewayCarousel finds the carousel a DSI section belongs to. A
// carouselID of 0 means the host has not yet resolved this PID to a
// carousel id, so a fresh slot is allocated; the gateway's own IOR then
// supplies the real id.
func (a *Assembler) resolveGatewayCarousel(carouselID uint32) (*Carousel, error) {
	if carouselID != 0 {
		return a.registry.FindOrAllocate(carouselID)
	}
	return a.registry.AllocateFor(0)
}
