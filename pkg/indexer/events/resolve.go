package events

// provider stages a provider and returns the value for a provider column.
func (in *Input) provider(address, moniker string) *string {
	if address == "" {
		return nil
	}
	in.Entities.GetOrSetProvider(address, moniker)
	return &address
}

func (in *Input) consumer(address string) *string {
	if address == "" {
		return nil
	}
	in.Entities.GetOrSetConsumer(address)
	return &address
}

func (in *Input) spec(id string) *string {
	if id == "" {
		return nil
	}
	in.Entities.GetOrSetSpec(id)
	return &id
}
