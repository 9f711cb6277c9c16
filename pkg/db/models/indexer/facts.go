package indexer

import (
	"time"
)

const (
	RelayPaymentsTableName              = "relay_payments"
	ConflictResponsesTableName          = "conflict_responses"
	ConflictVotesTableName              = "conflict_votes"
	SubscriptionBuysTableName           = "subscription_buys"
	ProviderReportedTableName           = "provider_reported"
	ProviderLatestBlockReportsTableName = "provider_latest_block_reports"
)

var RelayPaymentColumns = []ColumnDef{
	{Name: "relays", Type: "BIGINT"},
	{Name: "cu", Type: "BIGINT"},
	{Name: "pay", Type: "BIGINT"},
	{Name: "datetime", Type: "TIMESTAMPTZ"},
	{Name: "qos_sync", Type: "DOUBLE PRECISION"},
	{Name: "qos_availability", Type: "DOUBLE PRECISION"},
	{Name: "qos_latency", Type: "DOUBLE PRECISION"},
	{Name: "qos_sync_exc", Type: "DOUBLE PRECISION"},
	{Name: "qos_availability_exc", Type: "DOUBLE PRECISION"},
	{Name: "qos_latency_exc", Type: "DOUBLE PRECISION"},
	{Name: "provider", Type: "TEXT"},
	{Name: "spec_id", Type: "TEXT"},
	{Name: "block_id", Type: "BIGINT NOT NULL"},
	{Name: "consumer", Type: "TEXT"},
	{Name: "tx", Type: "TEXT"},
}

// RelayPayment is one lava_relay_payment event: a provider paid for serving relays.
type RelayPayment struct {
	Relays   *int64    `db:"relays" json:"relays,omitempty"`
	CU       *int64    `db:"cu" json:"cu,omitempty"`
	Pay      *int64    `db:"pay" json:"pay,omitempty"`
	Datetime time.Time `db:"datetime" json:"datetime"`

	QoSSync            *float64 `db:"qos_sync" json:"qos_sync,omitempty"`
	QoSAvailability    *float64 `db:"qos_availability" json:"qos_availability,omitempty"`
	QoSLatency         *float64 `db:"qos_latency" json:"qos_latency,omitempty"`
	QoSSyncExc         *float64 `db:"qos_sync_exc" json:"qos_sync_exc,omitempty"`
	QoSAvailabilityExc *float64 `db:"qos_availability_exc" json:"qos_availability_exc,omitempty"`
	QoSLatencyExc      *float64 `db:"qos_latency_exc" json:"qos_latency_exc,omitempty"`

	Provider *string `db:"provider" json:"provider,omitempty"`
	SpecID   *string `db:"spec_id" json:"spec_id,omitempty"`
	BlockID  int64   `db:"block_id" json:"block_id"`
	Consumer *string `db:"consumer" json:"consumer,omitempty"`
	Tx       *string `db:"tx" json:"tx,omitempty"`
}

func (r *RelayPayment) Values() []any {
	return []any{
		r.Relays, r.CU, r.Pay, r.Datetime,
		r.QoSSync, r.QoSAvailability, r.QoSLatency,
		r.QoSSyncExc, r.QoSAvailabilityExc, r.QoSLatencyExc,
		r.Provider, r.SpecID, r.BlockID, r.Consumer, r.Tx,
	}
}

var ConflictResponseColumns = []ColumnDef{
	{Name: "block_id", Type: "BIGINT NOT NULL"},
	{Name: "consumer", Type: "TEXT"},
	{Name: "spec_id", Type: "TEXT"},
	{Name: "tx", Type: "TEXT"},
	{Name: "vote_id", Type: "TEXT"},
	{Name: "request_block", Type: "BIGINT"},
	{Name: "vote_deadline", Type: "BIGINT"},
	{Name: "api_interface", Type: "TEXT"},
	{Name: "api_url", Type: "TEXT"},
	{Name: "connection_type", Type: "TEXT"},
	{Name: "request_data", Type: "TEXT"},
}

// ConflictResponse is a consumer detecting conflicting provider responses.
type ConflictResponse struct {
	BlockID        int64   `db:"block_id" json:"block_id"`
	Consumer       *string `db:"consumer" json:"consumer,omitempty"`
	SpecID         *string `db:"spec_id" json:"spec_id,omitempty"`
	Tx             *string `db:"tx" json:"tx,omitempty"`
	VoteID         *string `db:"vote_id" json:"vote_id,omitempty"`
	RequestBlock   *int64  `db:"request_block" json:"request_block,omitempty"`
	VoteDeadline   *int64  `db:"vote_deadline" json:"vote_deadline,omitempty"`
	APIInterface   *string `db:"api_interface" json:"api_interface,omitempty"`
	APIURL         *string `db:"api_url" json:"api_url,omitempty"`
	ConnectionType *string `db:"connection_type" json:"connection_type,omitempty"`
	RequestData    *string `db:"request_data" json:"request_data,omitempty"`
}

func (c *ConflictResponse) Values() []any {
	return []any{
		c.BlockID, c.Consumer, c.SpecID, c.Tx, c.VoteID, c.RequestBlock, c.VoteDeadline,
		c.APIInterface, c.APIURL, c.ConnectionType, c.RequestData,
	}
}

var ConflictVoteColumns = []ColumnDef{
	{Name: "vote_id", Type: "TEXT"},
	{Name: "block_id", Type: "BIGINT NOT NULL"},
	{Name: "provider", Type: "TEXT"},
	{Name: "tx", Type: "TEXT"},
}

// ConflictVote is a provider committing a vote on an open conflict.
type ConflictVote struct {
	VoteID   *string `db:"vote_id" json:"vote_id,omitempty"`
	BlockID  int64   `db:"block_id" json:"block_id"`
	Provider *string `db:"provider" json:"provider,omitempty"`
	Tx       *string `db:"tx" json:"tx,omitempty"`
}

func (c *ConflictVote) Values() []any {
	return []any{c.VoteID, c.BlockID, c.Provider, c.Tx}
}

var SubscriptionBuyColumns = []ColumnDef{
	{Name: "block_id", Type: "BIGINT NOT NULL"},
	{Name: "consumer", Type: "TEXT"},
	{Name: "duration", Type: "BIGINT"},
	{Name: "plan", Type: "TEXT"},
	{Name: "tx", Type: "TEXT"},
}

type SubscriptionBuy struct {
	BlockID  int64   `db:"block_id" json:"block_id"`
	Consumer *string `db:"consumer" json:"consumer,omitempty"`
	Duration *int64  `db:"duration" json:"duration,omitempty"`
	Plan     *string `db:"plan" json:"plan,omitempty"`
	Tx       *string `db:"tx" json:"tx,omitempty"`
}

func (s *SubscriptionBuy) Values() []any {
	return []any{s.BlockID, s.Consumer, s.Duration, s.Plan, s.Tx}
}

var ProviderReportedColumns = []ColumnDef{
	{Name: "provider", Type: "TEXT"},
	{Name: "block_id", Type: "BIGINT NOT NULL"},
	{Name: "cu", Type: "BIGINT"},
	{Name: "disconnections", Type: "BIGINT"},
	{Name: "epoch", Type: "BIGINT"},
	{Name: "errors", Type: "BIGINT"},
	{Name: "project", Type: "TEXT"},
	{Name: "chain_id", Type: "TEXT"},
	{Name: "datetime", Type: "TIMESTAMPTZ"},
	{Name: "total_complaint_this_epoch", Type: "BIGINT"},
	{Name: "tx", Type: "TEXT"},
}

// ProviderReported is a consumer complaint against a provider.
type ProviderReported struct {
	Provider            *string    `db:"provider" json:"provider,omitempty"`
	BlockID             int64      `db:"block_id" json:"block_id"`
	CU                  *int64     `db:"cu" json:"cu,omitempty"`
	Disconnections      *int64     `db:"disconnections" json:"disconnections,omitempty"`
	Epoch               *int64     `db:"epoch" json:"epoch,omitempty"`
	Errors              *int64     `db:"errors" json:"errors,omitempty"`
	Project             *string    `db:"project" json:"project,omitempty"`
	ChainID             *string    `db:"chain_id" json:"chain_id,omitempty"`
	Datetime            *time.Time `db:"datetime" json:"datetime,omitempty"`
	TotalComplaintEpoch *int64     `db:"total_complaint_this_epoch" json:"total_complaint_this_epoch,omitempty"`
	Tx                  *string    `db:"tx" json:"tx,omitempty"`
}

func (p *ProviderReported) Values() []any {
	return []any{
		p.Provider, p.BlockID, p.CU, p.Disconnections, p.Epoch, p.Errors,
		p.Project, p.ChainID, p.Datetime, p.TotalComplaintEpoch, p.Tx,
	}
}

var ProviderLatestBlockReportColumns = []ColumnDef{
	{Name: "provider", Type: "TEXT"},
	{Name: "block_id", Type: "BIGINT NOT NULL"},
	{Name: "tx", Type: "TEXT"},
	{Name: "timestamp", Type: "TIMESTAMPTZ NOT NULL"},
	{Name: "chain_id", Type: "TEXT NOT NULL"},
	{Name: "chain_block_height", Type: "BIGINT"},
}

// ProviderLatestBlockReport is the latest block a provider saw on one chain.
type ProviderLatestBlockReport struct {
	Provider         *string   `db:"provider" json:"provider,omitempty"`
	BlockID          int64     `db:"block_id" json:"block_id"`
	Tx               *string   `db:"tx" json:"tx,omitempty"`
	Timestamp        time.Time `db:"timestamp" json:"timestamp"`
	ChainID          string    `db:"chain_id" json:"chain_id"`
	ChainBlockHeight *int64    `db:"chain_block_height" json:"chain_block_height,omitempty"`
}

func (p *ProviderLatestBlockReport) Values() []any {
	return []any{p.Provider, p.BlockID, p.Tx, p.Timestamp, p.ChainID, p.ChainBlockHeight}
}

// Facts are the append-only rows produced by one block.
type Facts struct {
	Events             []*Event
	RelayPayments      []*RelayPayment
	ConflictResponses  []*ConflictResponse
	ConflictVotes      []*ConflictVote
	SubscriptionBuys   []*SubscriptionBuy
	ProviderReports    []*ProviderReported
	LatestBlockReports []*ProviderLatestBlockReport
}

// Len returns the total number of fact rows.
func (f *Facts) Len() int {
	return len(f.Events) + len(f.RelayPayments) + len(f.ConflictResponses) + len(f.ConflictVotes) +
		len(f.SubscriptionBuys) + len(f.ProviderReports) + len(f.LatestBlockReports)
}
