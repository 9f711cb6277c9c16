package events

import (
	"fmt"
	"time"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
)

// parseRelayPayment handles lava_relay_payment. Batched payments repeat every key
// with a positional suffix; only the last payment of the batch is kept.
func parseRelayPayment(in *Input) error {
	row := &indexermodels.RelayPayment{BlockID: in.Height, Tx: in.TxHash, Datetime: in.Time}
	var provider, consumer, spec string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "relayNumber":
			row.Relays, err = intSlot(value)
		case "CU":
			row.CU, err = intSlot(value)
		case "BasePay":
			row.Pay, err = ulavaSlot(value)
		case "ExcellenceQoSAvailability":
			row.QoSAvailabilityExc, err = floatSlot(value)
		case "ExcellenceQoSLatency":
			row.QoSLatencyExc, err = floatSlot(value)
		case "ExcellenceQoSSync":
			row.QoSSyncExc, err = floatSlot(value)
		case "QoSSync":
			row.QoSSync, err = floatSlot(value)
		case "QoSLatency":
			row.QoSLatency, err = floatSlot(value)
		case "QoSAvailability":
			row.QoSAvailability, err = floatSlot(value)
		case "provider":
			provider, err = ParseProviderAddress(value)
		case "chainID":
			spec = value
		case "client":
			consumer = value
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
	row.SpecID = in.spec(spec)
	row.Consumer = in.consumer(consumer)
	in.Entities.SetTx(in.TxHash, in.Height)
	in.Facts.RelayPayments = append(in.Facts.RelayPayments, row)
	return nil
}

func parseProviderReported(in *Input) error {
	row := &indexermodels.ProviderReported{BlockID: in.Height, Tx: in.TxHash}
	var provider string
	err := in.Attributes(func(key, value string) (err error) {
		switch key {
		case "cu":
			row.CU, err = intSlot(value)
		case "disconnections":
			row.Disconnections, err = intSlot(value)
		case "epoch":
			row.Epoch, err = intSlot(value)
		case "errors":
			row.Errors, err = intSlot(value)
		case "project":
			row.Project = ptr(value)
		case "provider":
			provider, err = ParseProviderAddress(value)
		case "timestamp":
			row.Datetime, err = parseReportTime(value)
		case "total_complaint_this_epoch":
			row.TotalComplaintEpoch, err = intSlot(value)
		case "chainID":
			row.ChainID = ptr(value)
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
	in.Facts.ProviderReports = append(in.Facts.ProviderReports, row)
	return nil
}

// reportTimeLayouts are the renderings the pairing module used over time.
var reportTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05 -0700 MST",
}

func parseReportTime(value string) (*time.Time, error) {
	for _, layout := range reportTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q", value)
}
