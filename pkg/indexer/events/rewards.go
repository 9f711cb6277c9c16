package events

import (
	"encoding/json"
	"fmt"
	"strings"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
)

func parseValidatorSlash(in *Input) error {
	e := in.NewEvent(indexermodels.EventValidatorSlash)
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "slash_fraction":
			e.R1, err = floatSlot(value)
		case "validator_address":
			e.T1 = ptr(value)
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := in.Verify(e.T1 != nil); err != nil {
		return err
	}
	in.AddEvent(e)
	return nil
}

func parseDelegatorClaimRewards(in *Input) error {
	e := in.NewEvent(indexermodels.EventDelegatorClaimRewards)
	var delegator string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "delegator":
			delegator, err = ParseProviderAddress(value)
		case "claimed":
			e.B1, err = ulavaSlot(value)
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := in.Verify(delegator != ""); err != nil {
		return err
	}

	e.Provider = in.provider(delegator, "")
	in.AddEvent(e)
	return nil
}

func parseIPRPCPoolEmission(in *Input) error {
	e := in.NewEvent(indexermodels.EventIPRPCPoolEmission)
	err := in.Attributes(func(key, value string) error {
		if key == "iprpc_rewards_leftovers" {
			e.T1 = ptr(value)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := in.Verify(e.T1 != nil); err != nil {
		return err
	}
	in.AddEvent(e)
	return nil
}

func parseDistributionPoolsRefill(in *Input) error {
	e := in.NewEvent(indexermodels.EventDistributionPoolsRefill)
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "allocation_pool_remaining_lifetime":
			e.I1, err = intSlot(value)
		case "next_refill_block":
			e.I2, err = intSlot(value)
		case "providers_distribution_pool_balance":
			e.I3, err = bigIntSlot(value)
		case "next_refill_time":
			e.T1 = ptr(value)
		}
		return err
	})
	if err != nil {
		return err
	}
	in.AddEvent(e)
	return nil
}

// parseProviderBonusRewards handles keys of the form "<provider> <chain>" whose
// value is the bonus amount. One row is written per (provider, chain) pair.
func parseProviderBonusRewards(in *Input) error {
	type bonus struct {
		provider string
		chain    string
		amount   int64
	}
	var (
		rewards []bonus
		index   = map[string]int{}
	)
	err := in.Attributes(func(key, value string) error {
		provider, chain, ok := strings.Cut(key, " ")
		if !ok || chain == "" {
			return fmt.Errorf("bonus key %q is not \"<provider> <chain>\"", key)
		}
		provider, err := ParseProviderAddress(provider)
		if err != nil {
			return err
		}
		amount, err := ParseBigInt(value)
		if err != nil {
			return err
		}
		if i, ok := index[key]; ok {
			rewards[i].amount = amount
			return nil
		}
		index[key] = len(rewards)
		rewards = append(rewards, bonus{provider: provider, chain: chain, amount: amount})
		return nil
	})
	if err != nil {
		return err
	}
	if err := in.Verify(len(rewards) > 0); err != nil {
		return err
	}

	for _, r := range rewards {
		e := in.NewEvent(indexermodels.EventProviderBonusRewards)
		e.Provider = in.provider(r.provider, "")
		e.T1 = ptr(r.chain)
		e.R1 = ptr(float64(r.amount))
		if b, err := json.Marshal(map[string]any{"chain": r.chain, "amount": r.amount}); err == nil {
			e.Fulltext = ptr(string(b))
		}
		in.AddEvent(e)
	}
	return nil
}
