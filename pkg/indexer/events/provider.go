package events

import (
	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
)

func parseStakeNewProvider(in *Input) error {
	e := in.NewEvent(indexermodels.EventStakeNewProvider)
	var provider, moniker string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "spec":
			e.T1 = ptr(value)
		case "provider":
			provider, err = ParseProviderAddress(value)
		case "stakeAppliedBlock":
			e.I1, err = intSlot(value)
		case "stake":
			e.B1, err = ulavaSlot(value)
		case "geolocation":
			e.I3, err = intSlot(value)
		case "effectiveImmediately":
			if value == "false" {
				e.I2 = ptr(int64(0))
			} else {
				e.I2 = ptr(int64(1))
			}
		case "moniker":
			moniker = value
			e.T2 = ptr(value)
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

func parseStakeUpdateProvider(in *Input) error {
	e := in.NewEvent(indexermodels.EventStakeUpdateProvider)
	var provider, moniker string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "stakeAppliedBlock":
			e.I1, err = intSlot(value)
		case "stake":
			e.B1, err = ulavaSlot(value)
		case "moniker":
			moniker = value
			e.T1 = ptr(value)
		case "spec":
			e.T2 = ptr(value)
		case "provider":
			provider, err = ParseProviderAddress(value)
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

// parseProviderUnstakeCommit has no verification step but still refuses to write
// a row without a provider.
func parseProviderUnstakeCommit(in *Input) error {
	e := in.NewEvent(indexermodels.EventProviderUnstakeCommit)
	var provider string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "geolocation":
			e.I1, err = intSlot(value)
		case "moniker":
			e.T1 = ptr(value)
		case "stake":
			e.B1, err = bigIntSlot(value)
		case "address":
			provider, err = ParseProviderAddress(value)
		case "chainID":
			e.T2 = ptr(value)
		}
		return err
	})
	if err != nil {
		return err
	}
	if provider == "" {
		return in.Verify(false)
	}

	e.Provider = in.provider(provider, "")
	in.AddEvent(e)
	return nil
}

func parseFreezeProvider(in *Input) error {
	e := in.NewEvent(indexermodels.EventFreezeProvider)
	var provider string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "providerAddress":
			provider, err = ParseProviderAddress(value)
		case "freezeReason":
			e.T1 = ptr(value)
		case "chainIDs":
			e.T2 = ptr(value)
		case "freezeRequestBlock":
			e.I1, err = intSlot(value)
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := in.Verify(provider != ""); err != nil {
		return err
	}

	e.Provider = in.provider(provider, "")
	in.AddEvent(e)
	return nil
}

func parseUnfreezeProvider(in *Input) error {
	e := in.NewEvent(indexermodels.EventUnfreezeProvider)
	var provider string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "providerAddress":
			provider, err = ParseProviderAddress(value)
		case "chainIDs":
			e.T1 = ptr(value)
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := in.Verify(provider != ""); err != nil {
		return err
	}

	e.Provider = in.provider(provider, "")
	in.AddEvent(e)
	return nil
}

// jailedAttributes is shared by the permanent and temporary jail events.
func jailedAttributes(e *indexermodels.Event, provider *string) func(key, value string) error {
	return func(key, value string) (err error) {
		switch key {
		case "chain_id":
			e.T1 = ptr(value)
		case "complaint_cu":
			e.B1, err = bigIntSlot(value)
		case "provider_address":
			*provider, err = ParseProviderAddress(value)
		case "serviced_cu":
			e.B2, err = bigIntSlot(value)
		}
		return err
	}
}

func parseProviderJailed(in *Input) error {
	e := in.NewEvent(indexermodels.EventProviderJailed)
	var provider string
	if err := in.Attributes(jailedAttributes(e, &provider)); err != nil {
		return err
	}
	if err := in.Verify(provider != ""); err != nil {
		return err
	}

	e.Provider = in.provider(provider, "")
	in.AddEvent(e)
	return nil
}

func parseProviderTemporaryJailed(in *Input) error {
	e := in.NewEvent(indexermodels.EventProviderTemporaryJailed)
	var provider string
	common := jailedAttributes(e, &provider)
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "duration":
			e.T2 = ptr(value)
		case "end":
			e.I1, err = intSlot(value)
		default:
			err = common(key, value)
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := in.Verify(provider != ""); err != nil {
		return err
	}

	e.Provider = in.provider(provider, "")
	in.AddEvent(e)
	return nil
}

// parseProviderLatestBlockReport writes one row per reported chain. Every key
// other than provider is a chain id whose value is that chain's latest height.
func parseProviderLatestBlockReport(in *Input) error {
	type chainHeight struct {
		chain  string
		height int64
	}
	var (
		provider string
		reports  []chainHeight
		index    = map[string]int{}
	)
	err := in.Attributes(func(key, value string) error {
		if key == "provider" {
			p, err := ParseProviderAddress(value)
			provider = p
			return err
		}
		chain, err := ParseAlphaNumeric(key)
		if err != nil {
			return err
		}
		height, err := ParseInt(value)
		if err != nil {
			return err
		}
		if i, ok := index[chain]; ok {
			reports[i].height = height
			return nil
		}
		index[chain] = len(reports)
		reports = append(reports, chainHeight{chain: chain, height: height})
		return nil
	})
	if err != nil {
		return err
	}
	if err := in.Verify(provider != ""); err != nil {
		return err
	}

	p := in.provider(provider, "")
	in.Entities.SetTx(in.TxHash, in.Height)
	for _, r := range reports {
		in.Facts.LatestBlockReports = append(in.Facts.LatestBlockReports, &indexermodels.ProviderLatestBlockReport{
			Provider:         p,
			BlockID:          in.Height,
			Tx:               in.TxHash,
			Timestamp:        in.Time,
			ChainID:          r.chain,
			ChainBlockHeight: ptr(r.height),
		})
	}
	return nil
}
