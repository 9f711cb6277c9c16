package events

import (
	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
)

func parseConflictVoteGotCommit(in *Input) error {
	row := &indexermodels.ConflictVote{BlockID: in.Height, Tx: in.TxHash}
	var provider string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "voteID":
			row.VoteID = ptr(value)
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

	row.Provider = in.provider(provider, "")
	in.Entities.SetTx(in.TxHash, in.Height)
	in.Facts.ConflictVotes = append(in.Facts.ConflictVotes, row)
	return nil
}

// parseResponseConflictDetection skips requestData, which carries the full relay body.
func parseResponseConflictDetection(in *Input) error {
	row := &indexermodels.ConflictResponse{BlockID: in.Height, Tx: in.TxHash}
	var consumer, spec string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "requestBlock":
			row.RequestBlock, err = intSlot(value)
		case "voteDeadline":
			row.VoteDeadline, err = intSlot(value)
		case "apiInterface":
			row.APIInterface = ptr(value)
		case "client":
			consumer, err = ParseProviderAddress(value)
		case "voteID":
			row.VoteID = ptr(value)
		case "chainID":
			spec = value
		case "apiURL":
			row.APIURL = ptr(value)
		case "connectionType":
			row.ConnectionType = ptr(value)
		}
		return err
	}, "requestData")
	if err != nil {
		return err
	}
	if err := in.Verify(consumer != ""); err != nil {
		return err
	}

	row.Consumer = in.consumer(consumer)
	row.SpecID = in.spec(spec)
	in.Entities.SetTx(in.TxHash, in.Height)
	in.Facts.ConflictResponses = append(in.Facts.ConflictResponses, row)
	return nil
}

func parseConflictDetectionReceived(in *Input) error {
	e := in.NewEvent(indexermodels.EventConflictDetectionReceived)
	var consumer string
	err := in.Attributes(func(key, value string) (err error) {
		if key == "client" {
			consumer, err = ParseProviderAddress(value)
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := in.Verify(consumer != ""); err != nil {
		return err
	}

	e.Consumer = in.consumer(consumer)
	in.AddEvent(e)
	return nil
}

func parseConflictVoteGotReveal(in *Input) error {
	e := in.NewEvent(indexermodels.EventVoteGotReveal)
	var provider string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "voteID":
			e.T1 = ptr(value)
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

	e.Provider = in.provider(provider, "")
	in.AddEvent(e)
	return nil
}

func parseConflictVoteRevealStarted(in *Input) error {
	e := in.NewEvent(indexermodels.EventVoteRevealStarted)
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "voteDeadline":
			e.I1, err = intSlot(value)
		case "voteID":
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

// voteTally reads the counters common to resolved and unresolved votes.
func voteTally(e *indexermodels.Event, key, value string) (err error) {
	switch key {
	case "voteID":
		e.T1 = ptr(value)
	case "NumOfNoVoters":
		e.I1, err = intSlot(value)
	case "NumOfVoters":
		e.I2, err = intSlot(value)
	case "RewardPool":
		e.B1, err = bigIntSlot(value)
	case "TotalVotes":
		e.B2, err = bigIntSlot(value)
	}
	return err
}

func parseConflictDetectionVoteResolved(in *Input) error {
	e := in.NewEvent(indexermodels.EventDetectionVoteResolved)
	var winner string
	err := in.Attributes(func(key, value string) (err error) {
		if key == "winner" {
			winner, err = ParseProviderAddress(value)
			return err
		}
		return voteTally(e, key, value)
	})
	if err != nil {
		return err
	}
	if err := in.Verify(winner != ""); err != nil {
		return err
	}

	e.Provider = in.provider(winner, "")
	in.AddEvent(e)
	return nil
}

func parseConflictDetectionVoteUnresolved(in *Input) error {
	e := in.NewEvent(indexermodels.EventDetectionVoteUnresolved)
	err := in.Attributes(func(key, value string) error {
		if key == "voteFailed" {
			e.T2 = ptr(value)
			return nil
		}
		return voteTally(e, key, value)
	})
	if err != nil {
		return err
	}
	in.AddEvent(e)
	return nil
}
