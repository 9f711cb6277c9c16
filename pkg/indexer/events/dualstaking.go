package events

import (
	"fmt"
	"strings"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
)

// Delegation events are written once per distinct party so that every involved
// address can be queried through the provider column.

func parseDelegateToProvider(in *Input) error {
	e := in.NewEvent(indexermodels.EventDelegateToProvider)
	var delegator, provider string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "delegator":
			delegator, err = ParseProviderAddress(value)
		case "provider":
			provider, err = ParseProviderAddress(value)
		case "chainID":
			e.T2 = ptr(value)
		case "amount":
			e.T3 = ptr(value)
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := in.Verify(delegator != "" || provider != ""); err != nil {
		return err
	}

	in.addPartyRows(e, delegator, provider)
	return nil
}

func parseUnbondFromProvider(in *Input) error {
	e := in.NewEvent(indexermodels.EventUnbondFromProvider)
	var delegator, provider string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "delegator":
			// the empty provider is rendered as a module name, not an address
			if strings.HasPrefix(value, "lava@") {
				delegator, err = ParseProviderAddress(value)
			}
		case "provider":
			if strings.HasPrefix(value, "lava@") {
				provider, err = ParseProviderAddress(value)
			}
		case "chainID":
			e.T2 = ptr(value)
		case "amount":
			e.B1, err = ulavaSlot(value)
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := in.Verify(delegator != "" || provider != ""); err != nil {
		return err
	}

	in.addPartyRows(e, delegator, provider)
	return nil
}

// addPartyRows writes the provider row and, when the delegator is another
// address, a mirrored row attributed to the delegator.
func (in *Input) addPartyRows(e *indexermodels.Event, delegator, provider string) {
	if delegator != "" && delegator != provider {
		mirror := *e
		mirror.Provider = in.provider(delegator, "")
		mirror.T1 = nil
		if provider != "" {
			mirror.T1 = ptr("provider: " + provider)
		}
		in.AddEvent(&mirror)
	}
	if provider == "" {
		return
	}
	e.Provider = in.provider(provider, "")
	if delegator != "" {
		e.T1 = ptr("delegator: " + delegator)
	}
	in.AddEvent(e)
}

func parseRedelegateBetweenProviders(in *Input) error {
	e := in.NewEvent(indexermodels.EventRedelegateBetweenProviders)
	var delegator, from, to, fromChain, toChain string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "delegator":
			delegator, err = ParseProviderAddress(value)
		case "from_provider":
			from, err = ParseProviderAddress(value)
		case "to_provider":
			to, err = ParseProviderAddress(value)
		case "from_chainID":
			fromChain = value
		case "to_chainID":
			toChain = value
		case "amount":
			e.B1, err = ulavaSlot(value)
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := in.Verify(delegator != "" || from != "" || to != ""); err != nil {
		return err
	}

	e.T1 = ptr(fmt.Sprintf("delegator: %s, from_provider: %s, to_provider: %s", delegator, from, to))
	e.T2 = ptr(fmt.Sprintf("from_chain: %s, to_chain: %s", fromChain, toChain))

	written := map[string]bool{}
	for _, party := range []string{from, to} {
		if party == "" || party == delegator || written[party] {
			continue
		}
		written[party] = true
		row := *e
		row.Provider = in.provider(party, "")
		in.AddEvent(&row)
	}
	e.Provider = in.provider(delegator, "")
	in.AddEvent(e)
	return nil
}

func parseFreezeFromUnbond(in *Input) error {
	e := in.NewEvent(indexermodels.EventFreezeFromUnbond)
	var provider, moniker string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "chain_id":
			e.T1 = ptr(value)
		case "effective_stake":
			e.B1, err = ulavaSlot(value)
		case "stake":
			e.B2, err = ulavaSlot(value)
		case "min_spec_stake":
			e.B3, err = ulavaSlot(value)
		case "provider", "provider_provider":
			var addr string
			if addr, err = ParseProviderAddress(value); err == nil && provider == "" {
				provider = addr
			}
		case "moniker":
			moniker = value
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := in.Verify(provider != ""); err != nil {
		return err
	}

	e.Provider = in.provider(provider, moniker)
	in.AddEvent(e)
	return nil
}

func parseUnstakeFromUnbond(in *Input) error {
	e := in.NewEvent(indexermodels.EventUnstakeFromUnbound)
	var provider, moniker string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "provider", "provider_provider":
			var addr string
			if addr, err = ParseProviderAddress(value); err == nil && provider == "" {
				provider = addr
			}
		case "chainID":
			e.T2 = ptr(value)
		case "provider_vault":
			e.T3 = ptr(value)
		case "min_self_delegation":
			e.B1, err = ulavaSlot(value)
		case "moniker":
			moniker = value
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := in.Verify(provider != ""); err != nil {
		return err
	}

	e.Provider = in.provider(provider, moniker)
	in.AddEvent(e)
	return nil
}
