package stakes

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/retry"
	"github.com/lavanet/jsinfo-indexer/pkg/rpc"
	"github.com/lavanet/jsinfo-indexer/pkg/utils"
	"go.uber.org/zap"
)

// Client is the module query subset needed for a full-state snapshot.
type Client interface {
	Specs(ctx context.Context) ([]rpc.ChainInfo, error)
	Providers(ctx context.Context, chainID string) ([]rpc.StakeEntry, error)
	UnstakingEntries(ctx context.Context) ([]rpc.StakeEntry, error)
	Plans(ctx context.Context) ([]rpc.PlanInfo, error)
}

// Builder gathers provider stakes across every spec.
type Builder struct {
	client Client
	pool   pond.Pool
	retry  retry.Config
	logger *zap.Logger
}

func NewBuilder(client Client, workers int, logger *zap.Logger) *Builder {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		client: client,
		pool:   pond.NewPool(workers, pond.WithQueueSize(256)),
		retry:  retry.RPCConfig(),
		logger: logger,
	}
}

// WithRetry overrides the retry policy, mostly for tests.
func (b *Builder) WithRetry(cfg retry.Config) *Builder {
	b.retry = cfg
	return b
}

// Close stops the query pool.
func (b *Builder) Close() {
	b.pool.StopAndWait()
}

// Build queries the chain and returns the snapshot stamped with height.
func (b *Builder) Build(ctx context.Context, height int64) (*indexermodels.StakeSnapshot, error) {
	start := time.Now()

	var chains []rpc.ChainInfo
	if err := retry.WithBackoff(ctx, b.retry, b.logger, "show all chains", func() (err error) {
		chains, err = b.client.Specs(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		entries  []rpc.StakeEntry
		fetchErr error
	)
	group := b.pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for _, chain := range chains {
		chainID := chain.ChainID
		if !utils.IsMeaningfulText(chainID) {
			continue
		}
		group.Submit(func() {
			if groupCtx.Err() != nil {
				return
			}
			var res []rpc.StakeEntry
			err := retry.WithBackoff(groupCtx, b.retry, b.logger, "providers "+chainID, func() (err error) {
				res, err = b.client.Providers(groupCtx, chainID)
				if rpc.IsClientError(err) {
					return retry.Permanent(err)
				}
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if fetchErr == nil {
					fetchErr = err
				}
				return
			}
			entries = append(entries, res...)
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		return nil, err
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var unstaking []rpc.StakeEntry
	if err := retry.WithBackoff(ctx, b.retry, b.logger, "unstake storage", func() (err error) {
		unstaking, err = b.client.UnstakingEntries(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	var plans []rpc.PlanInfo
	if err := retry.WithBackoff(ctx, b.retry, b.logger, "plans list", func() (err error) {
		plans, err = b.client.Plans(ctx)
		if rpc.IsNotFound(err) {
			plans, err = nil, nil
		}
		if rpc.IsClientError(err) {
			return retry.Permanent(err)
		}
		return err
	}); err != nil {
		return nil, err
	}

	snap := Assemble(height, chains, entries, unstaking, plans)
	b.logger.Info("stake snapshot built",
		zap.Int64("height", height),
		zap.Int("specs", len(snap.Specs)),
		zap.Int("providers", len(snap.Providers)),
		zap.Int("stakes", len(snap.Stakes)),
		zap.Int("unstaking", len(unstaking)),
		zap.Int("plans", len(snap.Plans)),
		zap.Duration("took", time.Since(start)))
	return snap, nil
}

// Assemble converts raw registry answers into a snapshot. One row is kept per
// (provider, spec): an unstaking entry wins over a regular one, otherwise the
// larger stake wins.
func Assemble(height int64, chains []rpc.ChainInfo, regular, unstaking []rpc.StakeEntry, plans []rpc.PlanInfo) *indexermodels.StakeSnapshot {
	snap := &indexermodels.StakeSnapshot{Height: height}

	stakes := map[string]*indexermodels.ProviderStake{}
	monikers := map[string]string{}
	specs := map[string]struct{}{}

	add := func(entry rpc.StakeEntry, status indexermodels.StakeStatus) {
		if !utils.IsMeaningfulText(entry.Address) || !utils.IsMeaningfulText(entry.Chain) {
			return
		}
		if m, seen := monikers[entry.Address]; !seen || m == "" {
			monikers[entry.Address] = entry.DisplayMoniker()
		}
		specs[entry.Chain] = struct{}{}

		row := stakeRow(height, entry, status)
		key := row.Provider + "|" + row.SpecID
		if prev, ok := stakes[key]; ok && !replaces(prev, row) {
			return
		}
		stakes[key] = row
	}
	for _, e := range regular {
		add(e, indexermodels.StakeActive)
	}
	for _, e := range unstaking {
		add(e, indexermodels.StakeUnstaking)
	}

	for _, c := range chains {
		if utils.IsMeaningfulText(c.ChainID) {
			specs[c.ChainID] = struct{}{}
		}
	}

	for _, key := range sortedKeys(stakes) {
		snap.Stakes = append(snap.Stakes, stakes[key])
	}
	for _, addr := range sortedKeys(monikers) {
		snap.Providers = append(snap.Providers, indexermodels.Provider{Address: addr, Moniker: monikers[addr]})
	}
	for _, id := range sortedKeys(specs) {
		snap.Specs = append(snap.Specs, indexermodels.Spec{ID: id})
	}
	for _, p := range plans {
		if !utils.IsMeaningfulText(p.Index) {
			continue
		}
		plan := indexermodels.Plan{ID: p.Index, Description: p.Description}
		if p.Price.Amount != "" {
			price := signedOrMinusOne(p.Price.Amount)
			plan.Price = &price
		}
		snap.Plans = append(snap.Plans, plan)
	}
	sort.Slice(snap.Plans, func(i, j int) bool { return snap.Plans[i].ID < snap.Plans[j].ID })
	return snap
}

func replaces(prev, next *indexermodels.ProviderStake) bool {
	prevUnstaking := prev.Status == indexermodels.StakeUnstaking
	nextUnstaking := next.Status == indexermodels.StakeUnstaking
	if prevUnstaking != nextUnstaking {
		return nextUnstaking
	}
	return next.Stake > prev.Stake
}

func stakeRow(height int64, e rpc.StakeEntry, status indexermodels.StakeStatus) *indexermodels.ProviderStake {
	var addons, extensions []string
	for _, ep := range e.Endpoints {
		addons = utils.AppendUnique(addons, ep.Addons...)
		extensions = utils.AppendUnique(extensions, ep.Extensions...)
	}

	// The chain stamps stakes that are not effective yet with a max-int sentinel
	// (MaxInt32, MaxInt64 or MaxUint64 depending on the node version).
	applied := int64(-1)
	if uint64(e.StakeAppliedBlock) < math.MaxInt32 {
		applied = int64(e.StakeAppliedBlock)
	}
	if status == indexermodels.StakeActive && applied == -1 {
		status = indexermodels.StakeFrozen
	}

	commission := int64(-1)
	if uint64(e.DelegateCommission) <= math.MaxInt64 {
		commission = int64(e.DelegateCommission)
	}

	return &indexermodels.ProviderStake{
		Provider:           e.Address,
		SpecID:             e.Chain,
		Stake:              signedOrMinusOne(e.Stake.Amount),
		DelegateLimit:      signedOrMinusOne(e.DelegateLimit.Amount),
		DelegateTotal:      signedOrMinusOne(e.DelegateTotal.Amount),
		DelegateCommission: commission,
		AppliedHeight:      applied,
		Geolocation:        int64(e.Geolocation),
		Addons:             strings.Join(addons, ","),
		Extensions:         strings.Join(extensions, ","),
		Status:             status,
		BlockID:            height,
	}
}

// signedOrMinusOne parses an amount, mapping empty to 0 and anything that does
// not fit an int64 to -1.
func signedOrMinusOne(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return -1
	}
	return v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
