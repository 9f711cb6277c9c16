package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Int64 decodes integers that the node may render either as JSON numbers or as strings.
type Int64 int64

func (i *Int64) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*i = 0
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("int64 %q: %w", b, err)
	}
	*i = Int64(n)
	return nil
}

func (i Int64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatInt(int64(i), 10))), nil
}

// Uint64 is the unsigned variant, needed for sentinel values such as MaxUint64.
type Uint64 uint64

func (u *Uint64) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*u = 0
		return nil
	}
	// Negative values only appear as "not set" sentinels.
	if b[0] == '-' {
		if _, err := strconv.ParseInt(string(b), 10, 64); err != nil {
			return fmt.Errorf("uint64 %q: %w", b, err)
		}
		*u = Uint64(^uint64(0))
		return nil
	}
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("uint64 %q: %w", b, err)
	}
	*u = Uint64(n)
	return nil
}

func (u Uint64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatUint(uint64(u), 10))), nil
}

// rpcRequest is a JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// rpcResponse is a JSON-RPC 2.0 response envelope.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("rpc error %d: %s (%s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// EventAttribute is one key/value pair of a chain event, in emission order.
type EventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Index bool   `json:"index,omitempty"`
}

// Event is a raw ABCI event.
type Event struct {
	Type       string           `json:"type"`
	Attributes []EventAttribute `json:"attributes"`
}

type BlockHeader struct {
	ChainID string    `json:"chain_id"`
	Height  Int64     `json:"height"`
	Time    time.Time `json:"time"`
}

type BlockData struct {
	Txs []string `json:"txs"`
}

type Block struct {
	Header *BlockHeader `json:"header"`
	Data   BlockData    `json:"data"`
}

type BlockID struct {
	Hash string `json:"hash"`
}

// ResultBlock is the result of the `block` method.
type ResultBlock struct {
	BlockID BlockID `json:"block_id"`
	Block   *Block  `json:"block"`
}

// Height returns the header height, or zero when the header is missing.
func (b *ResultBlock) Height() int64 {
	if b == nil || b.Block == nil || b.Block.Header == nil {
		return 0
	}
	return int64(b.Block.Header.Height)
}

// TxCount is the number of raw transactions carried in the block body.
func (b *ResultBlock) TxCount() int {
	if b == nil || b.Block == nil {
		return 0
	}
	return len(b.Block.Data.Txs)
}

type ExecTxResult struct {
	Code      uint32  `json:"code"`
	Log       string  `json:"log,omitempty"`
	GasWanted Int64   `json:"gas_wanted"`
	GasUsed   Int64   `json:"gas_used"`
	Events    []Event `json:"events"`
}

// TxResult is one entry of a tx_search answer.
type TxResult struct {
	Hash     string       `json:"hash"`
	Height   Int64        `json:"height"`
	Index    uint32       `json:"index"`
	TxResult ExecTxResult `json:"tx_result"`
}

type ResultTxSearch struct {
	Txs        []TxResult `json:"txs"`
	TotalCount Int64      `json:"total_count"`
}

// ResultBlockResults is the result of the `block_results` method. Older nodes fill
// begin/end block events, newer ones fill finalize_block_events.
type ResultBlockResults struct {
	Height              Int64          `json:"height"`
	TxsResults          []ExecTxResult `json:"txs_results"`
	BeginBlockEvents    []Event        `json:"begin_block_events"`
	EndBlockEvents      []Event        `json:"end_block_events"`
	FinalizeBlockEvents []Event        `json:"finalize_block_events"`
}

type SyncInfo struct {
	LatestBlockHeight Int64     `json:"latest_block_height"`
	LatestBlockTime   time.Time `json:"latest_block_time"`
	CatchingUp        bool      `json:"catching_up"`
}

type ResultStatus struct {
	SyncInfo SyncInfo `json:"sync_info"`
}

// Coin is a cosmos sdk amount.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// ChainInfo is one entry of spec/show_all_chains.
type ChainInfo struct {
	ChainName string `json:"chainName"`
	ChainID   string `json:"chainID"`
}

// Endpoint is a provider service endpoint as stored in its stake entry.
type Endpoint struct {
	IPPort        string   `json:"iPPORT"`
	Geolocation   Int64    `json:"geolocation"`
	Addons        []string `json:"addons"`
	APIInterfaces []string `json:"api_interfaces"`
	Extensions    []string `json:"extensions"`
}

type StakeDescription struct {
	Moniker  string `json:"moniker"`
	Identity string `json:"identity"`
	Website  string `json:"website"`
}

// StakeEntry is a provider stake on one spec.
type StakeEntry struct {
	Stake              Coin             `json:"stake"`
	Address            string           `json:"address"`
	StakeAppliedBlock  Uint64           `json:"stake_applied_block"`
	Endpoints          []Endpoint       `json:"endpoints"`
	Geolocation        Int64            `json:"geolocation"`
	Chain              string           `json:"chain"`
	Moniker            string           `json:"moniker"`
	DelegateTotal      Coin             `json:"delegate_total"`
	DelegateLimit      Coin             `json:"delegate_limit"`
	DelegateCommission Uint64           `json:"delegate_commission"`
	Vault              string           `json:"vault"`
	Description        StakeDescription `json:"description"`
}

// DisplayMoniker prefers the description moniker, which replaced the top-level field.
func (s StakeEntry) DisplayMoniker() string {
	if s.Description.Moniker != "" {
		return s.Description.Moniker
	}
	return s.Moniker
}

// PlanInfo is one entry of plans/list.
type PlanInfo struct {
	Index       string `json:"index"`
	Description string `json:"description"`
	Price       Coin   `json:"price"`
}
