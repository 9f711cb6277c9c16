package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// LavaClient talks JSON-RPC to the Tendermint endpoint and REST to the module query endpoint.
type LavaClient struct {
	tm   *HTTPClient
	rest *HTTPClient
}

// NewLavaClient builds a client. restEndpoints may be empty when only block ingest is needed.
func NewLavaClient(rpcEndpoints, restEndpoints []string, o Opts) *LavaClient {
	tmOpts := o
	tmOpts.Endpoints = rpcEndpoints
	restOpts := o
	restOpts.Endpoints = restEndpoints
	return &LavaClient{
		tm:   NewHTTPWithOpts(tmOpts),
		rest: NewHTTPWithOpts(restOpts),
	}
}

// call performs one JSON-RPC method call and decodes its result into out.
func (c *LavaClient) call(ctx context.Context, method string, params map[string]any, out any) error {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.tm.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	var resp rpcResponse
	if err := c.tm.doJSON(ctx, http.MethodPost, "/", req, &resp); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("%s: %w", method, resp.Error)
	}
	if len(resp.Result) == 0 {
		return fmt.Errorf("%s: empty result", method)
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}

func (c *LavaClient) Status(ctx context.Context) (*ResultStatus, error) {
	var out ResultStatus
	if err := c.call(ctx, "status", map[string]any{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *LavaClient) Block(ctx context.Context, height int64) (*ResultBlock, error) {
	var out ResultBlock
	if err := c.call(ctx, "block", map[string]any{"height": strconv.FormatInt(height, 10)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TxSearchByHeight returns every transaction committed at height, walking all result pages.
func (c *LavaClient) TxSearchByHeight(ctx context.Context, height int64) ([]TxResult, error) {
	var all []TxResult
	for page := 1; ; page++ {
		var out ResultTxSearch
		params := map[string]any{
			"query":    fmt.Sprintf("tx.height=%d", height),
			"prove":    false,
			"page":     strconv.Itoa(page),
			"per_page": strconv.Itoa(txSearchPerPage),
			"order_by": "asc",
		}
		if err := c.call(ctx, "tx_search", params, &out); err != nil {
			return nil, err
		}
		all = append(all, out.Txs...)
		if len(out.Txs) == 0 || int64(len(all)) >= int64(out.TotalCount) {
			return all, nil
		}
	}
}

func (c *LavaClient) BlockResults(ctx context.Context, height int64) (*ResultBlockResults, error) {
	var out ResultBlockResults
	if err := c.call(ctx, "block_results", map[string]any{"height": strconv.FormatInt(height, 10)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *LavaClient) Specs(ctx context.Context) ([]ChainInfo, error) {
	var out struct {
		ChainInfoList []ChainInfo `json:"chainInfoList"`
	}
	if err := c.rest.doJSON(ctx, http.MethodGet, showAllChainsPath, nil, &out); err != nil {
		return nil, fmt.Errorf("show all chains: %w", err)
	}
	return out.ChainInfoList, nil
}

func (c *LavaClient) Providers(ctx context.Context, chainID string) ([]StakeEntry, error) {
	var out struct {
		StakeEntry []StakeEntry `json:"stakeEntry"`
	}
	path := fmt.Sprintf(providersPath, url.PathEscape(chainID))
	if err := c.rest.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("providers %s: %w", chainID, err)
	}
	return out.StakeEntry, nil
}

// UnstakingEntries returns the unstake registry. The chain answers "not found" when it is empty.
func (c *LavaClient) UnstakingEntries(ctx context.Context) ([]StakeEntry, error) {
	var out struct {
		StakeStorage struct {
			Index        string       `json:"index"`
			StakeEntries []StakeEntry `json:"stakeEntries"`
		} `json:"stakeStorage"`
	}
	if err := c.rest.doJSON(ctx, http.MethodGet, unstakeEntryPath, nil, &out); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("unstake storage: %w", err)
	}
	return out.StakeStorage.StakeEntries, nil
}

func (c *LavaClient) Plans(ctx context.Context) ([]PlanInfo, error) {
	var out struct {
		PlansInfo []PlanInfo `json:"plansInfo"`
	}
	if err := c.rest.doJSON(ctx, http.MethodGet, plansListPath, nil, &out); err != nil {
		return nil, fmt.Errorf("plans list: %w", err)
	}
	return out.PlansInfo, nil
}

// IsNotFound reports whether err is a module query "not found" answer.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.Status == http.StatusNotFound || strings.Contains(httpErr.Body, "not found")
}

// IsClientError reports whether err is a 4xx answer. Those are not retried.
func IsClientError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status >= 400 && httpErr.Status < 500
}
