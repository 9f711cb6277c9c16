package indexer

import (
	"time"
)

const (
	BlocksTableName    = "blocks"
	ProvidersTableName = "providers"
	SpecsTableName     = "specs"
	ConsumersTableName = "consumers"
	TxsTableName       = "txs"
	PlansTableName     = "plans"
)

// BlockColumns defines the schema for the blocks table.
var BlockColumns = []ColumnDef{
	{Name: "height", Type: "BIGINT PRIMARY KEY"},
	{Name: "datetime", Type: "TIMESTAMPTZ"},
}

// Block is an indexed height. A row exists only once the whole block committed.
type Block struct {
	Height   int64     `db:"height" json:"height"`
	Datetime time.Time `db:"datetime" json:"datetime"`
}

func (b Block) Values() []any { return []any{b.Height, b.Datetime} }

var ProviderColumns = []ColumnDef{
	{Name: "address", Type: "TEXT PRIMARY KEY"},
	{Name: "moniker", Type: "TEXT NOT NULL DEFAULT ''"},
}

// Provider is identified by its bech32 address. Moniker may be empty.
type Provider struct {
	Address string `db:"address" json:"address"`
	Moniker string `db:"moniker" json:"moniker"`
}

func (p Provider) Values() []any { return []any{p.Address, p.Moniker} }

var SpecColumns = []ColumnDef{
	{Name: "id", Type: "TEXT PRIMARY KEY"},
}

// Spec is a supported chain/service identifier such as ETH1.
type Spec struct {
	ID string `db:"id" json:"id"`
}

func (s Spec) Values() []any { return []any{s.ID} }

var ConsumerColumns = []ColumnDef{
	{Name: "address", Type: "TEXT PRIMARY KEY"},
}

type Consumer struct {
	Address string `db:"address" json:"address"`
}

func (c Consumer) Values() []any { return []any{c.Address} }

var TxColumns = []ColumnDef{
	{Name: "hash", Type: "TEXT PRIMARY KEY"},
	{Name: "block_id", Type: "BIGINT"},
}

// Tx is a committed transaction. Block-level events have no Tx.
type Tx struct {
	Hash    string `db:"hash" json:"hash"`
	BlockID int64  `db:"block_id" json:"block_id"`
}

func (t Tx) Values() []any { return []any{t.Hash, t.BlockID} }

var PlanColumns = []ColumnDef{
	{Name: "id", Type: "TEXT PRIMARY KEY"},
	{Name: "description", Type: "TEXT NOT NULL DEFAULT ''"},
	{Name: "price", Type: "BIGINT"},
}

// Plan is a subscription plan, refreshed from the plans registry.
type Plan struct {
	ID          string `db:"id" json:"id"`
	Description string `db:"description" json:"description"`
	Price       *int64 `db:"price" json:"price,omitempty"`
}

func (p Plan) Values() []any { return []any{p.ID, p.Description, p.Price} }

// EntitySet is the set of entities staged while processing one unit of work.
type EntitySet struct {
	Providers []Provider
	Specs     []Spec
	Consumers []Consumer
	Txs       []Tx
	Plans     []Plan
}

// Len returns the number of staged entities.
func (s EntitySet) Len() int {
	return len(s.Providers) + len(s.Specs) + len(s.Consumers) + len(s.Txs) + len(s.Plans)
}
