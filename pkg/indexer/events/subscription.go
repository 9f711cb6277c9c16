package events

import (
	"strings"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
)

// projectConsumer returns the subscription owner of a "<consumer>-<project>" project id.
func projectConsumer(project string) string {
	consumer, _, _ := strings.Cut(project, "-")
	return consumer
}

func parseBuySubscription(in *Input) error {
	row := &indexermodels.SubscriptionBuy{BlockID: in.Height, Tx: in.TxHash}
	var consumer, plan string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "consumer":
			consumer, err = ParseProviderAddress(value)
		case "duration":
			row.Duration, err = intSlot(value)
		case "plan":
			plan = value
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := in.Verify(consumer != ""); err != nil {
		return err
	}

	row.Consumer = in.consumer(consumer)
	if plan != "" {
		in.Entities.GetOrSetPlan(plan, "", nil)
		row.Plan = &plan
	}
	in.Entities.SetTx(in.TxHash, in.Height)
	in.Facts.SubscriptionBuys = append(in.Facts.SubscriptionBuys, row)
	return nil
}

func parseAddProjectToSubscription(in *Input) error {
	return parseProjectSubscription(in, indexermodels.EventAddProjectToSubscription)
}

func parseDelProjectToSubscription(in *Input) error {
	return parseProjectSubscription(in, indexermodels.EventDelProjectToSubscription)
}

func parseProjectSubscription(in *Input, t indexermodels.EventType) error {
	e := in.NewEvent(t)
	var consumer string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "subscription":
			consumer, err = ParseProviderAddress(value)
		case "projectName":
			e.T1 = ptr(value)
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

func parseExpireSubscription(in *Input) error {
	e := in.NewEvent(indexermodels.EventExpireSubscription)
	var consumer string
	err := in.Attributes(func(key, value string) (err error) {
		if key == "consumer" {
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

func parseAddKeyToProject(in *Input) error {
	e := in.NewEvent(indexermodels.EventAddKeyToProject)
	var consumer string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "project":
			e.T1 = ptr(value)
			consumer = projectConsumer(value)
		case "key":
			e.T2 = ptr(value)
		case "keytype":
			e.I1, err = intSlot(value)
		case "block":
			e.I2, err = intSlot(value)
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

func parseDelKeyFromProject(in *Input) error {
	e := in.NewEvent(indexermodels.EventDelKeyFromProject)
	var consumer string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "project":
			e.T1 = ptr(value)
			consumer = projectConsumer(value)
		case "key":
			var addr string
			addr, err = ParseProviderAddress(value)
			e.T2 = textPtr(addr)
		case "keytype":
			e.I1, err = intSlot(value)
		case "block":
			e.I2, err = intSlot(value)
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

// parseSetSubscriptionPolicy keeps the raw attributes only.
func parseSetSubscriptionPolicy(in *Input) error {
	e := in.NewEvent(indexermodels.EventSetSubscriptionPolicy)
	if err := in.Attributes(func(string, string) error { return nil }); err != nil {
		return err
	}
	in.AddEvent(e)
	return nil
}
