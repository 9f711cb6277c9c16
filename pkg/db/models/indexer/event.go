package indexer

import "time"

const EventsTableName = "events"

// EventColumns defines the schema for the events table.
// The slot meaning per event type is documented in event_types.go.
var EventColumns = []ColumnDef{
	{Name: "event_type", Type: "INTEGER NOT NULL"},
	{Name: "tx", Type: "TEXT"},
	{Name: "block_id", Type: "BIGINT NOT NULL"},
	{Name: "provider", Type: "TEXT"},
	{Name: "consumer", Type: "TEXT"},
	{Name: "t1", Type: "TEXT"},
	{Name: "t2", Type: "TEXT"},
	{Name: "t3", Type: "TEXT"},
	{Name: "i1", Type: "BIGINT"},
	{Name: "i2", Type: "BIGINT"},
	{Name: "i3", Type: "BIGINT"},
	{Name: "b1", Type: "BIGINT"},
	{Name: "b2", Type: "BIGINT"},
	{Name: "b3", Type: "BIGINT"},
	{Name: "r1", Type: "DOUBLE PRECISION"},
	{Name: "r2", Type: "DOUBLE PRECISION"},
	{Name: "r3", Type: "DOUBLE PRECISION"},
	{Name: "fulltext", Type: "TEXT"},
	{Name: "timestamp", Type: "TIMESTAMPTZ"},
}

// Event is the generic wide sparse fact row. Every slot is nullable so that
// an unset field and a zero value stay distinguishable.
type Event struct {
	EventType EventType `db:"event_type" json:"event_type"`
	Tx        *string   `db:"tx" json:"tx,omitempty"`
	BlockID   int64     `db:"block_id" json:"block_id"`
	Provider  *string   `db:"provider" json:"provider,omitempty"`
	Consumer  *string   `db:"consumer" json:"consumer,omitempty"`

	T1 *string `db:"t1" json:"t1,omitempty"`
	T2 *string `db:"t2" json:"t2,omitempty"`
	T3 *string `db:"t3" json:"t3,omitempty"`

	I1 *int64 `db:"i1" json:"i1,omitempty"`
	I2 *int64 `db:"i2" json:"i2,omitempty"`
	I3 *int64 `db:"i3" json:"i3,omitempty"`

	B1 *int64 `db:"b1" json:"b1,omitempty"`
	B2 *int64 `db:"b2" json:"b2,omitempty"`
	B3 *int64 `db:"b3" json:"b3,omitempty"`

	R1 *float64 `db:"r1" json:"r1,omitempty"`
	R2 *float64 `db:"r2" json:"r2,omitempty"`
	R3 *float64 `db:"r3" json:"r3,omitempty"`

	Fulltext  *string   `db:"fulltext" json:"fulltext,omitempty"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

func (e *Event) Values() []any {
	return []any{
		int32(e.EventType), e.Tx, e.BlockID, e.Provider, e.Consumer,
		e.T1, e.T2, e.T3,
		e.I1, e.I2, e.I3,
		e.B1, e.B2, e.B3,
		e.R1, e.R2, e.R3,
		e.Fulltext, e.Timestamp,
	}
}
