package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/lavanet/jsinfo-indexer/pkg/blockcache"
	"github.com/lavanet/jsinfo-indexer/pkg/retry"
	"github.com/lavanet/jsinfo-indexer/pkg/rpc"
	"go.uber.org/zap"
)

var (
	// ErrHeaderMissing is returned when the node answers a block without a header.
	ErrHeaderMissing = errors.New("block header missing")
	// ErrHeightMismatch is returned when block_results answers for another height.
	ErrHeightMismatch = errors.New("block results height mismatch")
)

// RPCBlockSource fetches the raw material of one height. Every call goes
// through the disk cache first and falls back to the node with bounded retries.
type RPCBlockSource struct {
	client rpc.Client
	cache  *blockcache.Cache
	retry  retry.Config
	logger *zap.Logger
}

// New builds a source. cache may be nil.
func New(client rpc.Client, cache *blockcache.Cache, logger *zap.Logger) *RPCBlockSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RPCBlockSource{
		client: client,
		cache:  cache,
		retry:  retry.RPCConfig(),
		logger: logger,
	}
}

// WithRetry overrides the retry policy, mostly for tests.
func (s *RPCBlockSource) WithRetry(cfg retry.Config) *RPCBlockSource {
	s.retry = cfg
	return s
}

func (s *RPCBlockSource) GetBlock(ctx context.Context, height int64) (*rpc.ResultBlock, error) {
	var out rpc.ResultBlock
	if s.cached(height, blockcache.KindBlock, &out) && out.Block != nil && out.Block.Header != nil {
		return &out, nil
	}

	var blk *rpc.ResultBlock
	err := retry.WithBackoff(ctx, s.retry, s.logger, fmt.Sprintf("block %d", height), func() error {
		b, err := s.client.Block(ctx, height)
		if err != nil {
			return err
		}
		if b == nil || b.Block == nil || b.Block.Header == nil {
			return fmt.Errorf("height %d: %w", height, ErrHeaderMissing)
		}
		blk = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.store(height, blockcache.KindBlock, blk)
	return blk, nil
}

// GetTxs returns the transactions committed at height. blk is only used to
// cross-check the tx count.
func (s *RPCBlockSource) GetTxs(ctx context.Context, height int64, blk *rpc.ResultBlock) ([]rpc.TxResult, error) {
	var out []rpc.TxResult
	if s.cached(height, blockcache.KindTxs, &out) {
		return out, nil
	}

	var txs []rpc.TxResult
	err := retry.WithBackoff(ctx, s.retry, s.logger, fmt.Sprintf("tx_search %d", height), func() error {
		res, err := s.client.TxSearchByHeight(ctx, height)
		if err != nil {
			return err
		}
		txs = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(txs) == 0 && blk.TxCount() > 0 {
		s.logger.Warn("tx_search returned no transactions for a non-empty block",
			zap.Int64("height", height),
			zap.Int("block_txs", blk.TxCount()))
	}
	if txs == nil {
		txs = []rpc.TxResult{}
	}
	s.store(height, blockcache.KindTxs, txs)
	return txs, nil
}

// GetBlockResultEvents returns begin-block events followed by end-block and
// finalize-block events.
func (s *RPCBlockSource) GetBlockResultEvents(ctx context.Context, height int64) ([]rpc.Event, error) {
	var out []rpc.Event
	if s.cached(height, blockcache.KindEvents, &out) {
		return out, nil
	}

	var events []rpc.Event
	err := retry.WithBackoff(ctx, s.retry, s.logger, fmt.Sprintf("block_results %d", height), func() error {
		res, err := s.client.BlockResults(ctx, height)
		if err != nil {
			return err
		}
		if int64(res.Height) != height {
			return fmt.Errorf("requested %d got %d: %w", height, int64(res.Height), ErrHeightMismatch)
		}
		events = make([]rpc.Event, 0, len(res.BeginBlockEvents)+len(res.EndBlockEvents)+len(res.FinalizeBlockEvents))
		events = append(events, res.BeginBlockEvents...)
		events = append(events, res.EndBlockEvents...)
		events = append(events, res.FinalizeBlockEvents...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.store(height, blockcache.KindEvents, events)
	return events, nil
}

func (s *RPCBlockSource) cached(height int64, kind blockcache.Kind, out any) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.Get(height, kind, out)
}

func (s *RPCBlockSource) store(height int64, kind blockcache.Kind, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(height, kind, v); err != nil {
		s.logger.Warn("cache write failed",
			zap.Int64("height", height),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}
