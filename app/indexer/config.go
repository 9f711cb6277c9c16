package indexer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lavanet/jsinfo-indexer/pkg/blockcache"
	"github.com/lavanet/jsinfo-indexer/pkg/db/postgres"
	"github.com/lavanet/jsinfo-indexer/pkg/indexer/events"
	"github.com/lavanet/jsinfo-indexer/pkg/utils"
)

// ErrConfig marks configuration the process cannot start with.
var ErrConfig = errors.New("invalid configuration")

// BlockType restricts which heights a deployment indexes.
type BlockType string

const (
	BlockTypeBoth BlockType = "both"
	BlockTypeEven BlockType = "even"
	BlockTypeOdd  BlockType = "odd"
)

// Wants reports whether height belongs to this deployment.
func (b BlockType) Wants(height int64) bool {
	switch b {
	case BlockTypeEven:
		return height%2 == 0
	case BlockTypeOdd:
		return height%2 != 0
	default:
		return true
	}
}

type Config struct {
	RPCURL      string
	RESTURL     string
	PostgresURL string

	StartBlock   int64
	BatchSize    int
	Workers      int
	PollInterval time.Duration
	BlockType    BlockType
	ChunkSize    int
	Attributes   events.Config

	// GracefulExit bounds the process wall-clock runtime. Zero means unbounded.
	GracefulExit time.Duration
	SnapshotCron string

	BackfillLanes int
	BackfillFrom  int64

	// GapScan is how many heights below the stored maximum are checked for
	// holes when the head loop starts. Zero disables the scan.
	GapScan int64

	Cache blockcache.Config
	Addr  string
}

// LoadConfig reads the environment. Errors wrap ErrConfig.
func LoadConfig() (Config, error) {
	cfg := Config{
		RPCURL:       utils.Env("LAVA_RPC_URL", "https://public-rpc.lavanet.xyz:443"),
		RESTURL:      utils.Env("LAVA_REST_URL", "https://public-rest.lavanet.xyz"),
		PostgresURL:  utils.Env("POSTGRES_URL", "postgres://localhost:5432/postgres"),
		StartBlock:   utils.EnvInt64("INDEXER_START_BLOCK", 340778),
		BatchSize:    utils.EnvInt("INDEXER_BATCH_SIZE", 100),
		Workers:      utils.EnvInt("INDEXER_N_WORKERS", 2),
		PollInterval: time.Duration(utils.EnvInt64("INDEXER_POLL_MS", 5000)) * time.Millisecond,
		BlockType:    BlockType(strings.ToLower(utils.Env("INDEXER_BLOCK_TYPE", string(BlockTypeBoth)))),
		ChunkSize:    utils.EnvInt("INDEXER_CHUNK_SIZE", 20),
		Attributes: events.Config{
			MaxLength: utils.EnvInt("INDEXER_ATTRIBUTE_MAX_LENGTH", 5000),
			MaxKeys:   utils.EnvInt("INDEXER_ATTRIBUTE_KEY_COUNT_MAX", 5000),
		},
		GracefulExit:  time.Duration(utils.EnvInt64("INDEXER_GRACEFUL_EXIT_HOURS", 2)) * time.Hour,
		SnapshotCron:  utils.Env("INDEXER_SNAPSHOT_CRON", "0 */5 * * * *"),
		BackfillLanes: utils.EnvInt("INDEXER_BACKFILL_LANES", 0),
		BackfillFrom:  utils.EnvInt64("INDEXER_BACKFILL_FROM", 0),
		GapScan:       utils.EnvInt64("INDEXER_GAP_SCAN_BLOCKS", 10000),
		Addr:          utils.Env("ADDR", ":3010"),
	}

	// An explicitly empty value means the operator cleared it on purpose.
	if utils.EnvIsSet("LAVA_RPC_URL") && strings.TrimSpace(os.Getenv("LAVA_RPC_URL")) == "" {
		return Config{}, fmt.Errorf("%w: LAVA_RPC_URL is empty", ErrConfig)
	}
	if _, err := postgres.ParseURL(cfg.PostgresURL); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	switch cfg.BlockType {
	case BlockTypeBoth, BlockTypeEven, BlockTypeOdd:
	default:
		return Config{}, fmt.Errorf("%w: INDEXER_BLOCK_TYPE %q is not one of even, odd, both", ErrConfig, cfg.BlockType)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	cacheDir := utils.Env("CACHE_PATH", "")
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		cacheDir = filepath.Join(home, "Documents", "jsinfo_disk_cache")
	}
	maxBytes, err := utils.ParseSize(utils.Env("CACHE_MAX_SIZE", "50gb"))
	if err != nil {
		return Config{}, fmt.Errorf("%w: CACHE_MAX_SIZE: %v", ErrConfig, err)
	}
	cfg.Cache = blockcache.Config{
		Dir:      cacheDir,
		Read:     utils.EnvBool("CACHE_READ", false),
		Write:    utils.EnvBool("CACHE_WRITE", false),
		Compress: utils.EnvBool("CACHE_COMPRESSION", true),
		MaxBytes: maxBytes,
	}
	return cfg, nil
}
