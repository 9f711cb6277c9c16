// Package blockcache is a size-bounded disk cache of raw RPC answers keyed by
// (height, kind). When the cache grows past its budget the lowest heights are
// evicted first, so the newest blocks are the ones kept.
package blockcache

import (
	"container/heap"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// Kind is the RPC artifact stored in an entry.
type Kind string

const (
	KindBlock  Kind = "block"
	KindTxs    Kind = "txs"
	KindEvents Kind = "events"
)

const (
	jsonExt = ".json"
	zstExt  = ".json.zst"
)

// Config toggles reads and writes independently, which allows pure live mode,
// replay mode, or populating while reading.
type Config struct {
	Dir      string
	Read     bool
	Write    bool
	Compress bool
	MaxBytes int64
}

type entry struct {
	height int64
	size   int64
}

// Cache is safe for concurrent use. Size accounting is shared by every lane in
// this process; another process writing the same directory is not accounted for.
type Cache struct {
	cfg    Config
	logger *zap.Logger

	entries *xsync.Map[string, entry]
	total   atomic.Int64

	mu    sync.Mutex
	order heightHeap

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// New opens the cache directory, creating it when absent, and rebuilds the
// size index from the files already there.
func New(cfg Config, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		cfg:     cfg,
		logger:  logger,
		entries: xsync.NewMap[string, entry](),
	}
	if !cfg.Read && !cfg.Write {
		return c, nil
	}
	if cfg.Dir == "" {
		return nil, errors.New("blockcache: directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("blockcache: create %s: %w", cfg.Dir, err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("blockcache: zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("blockcache: zstd decoder: %w", err)
	}
	c.enc, c.dec = enc, dec

	if err := c.rebuild(); err != nil {
		return nil, err
	}
	logger.Info("Block cache ready",
		zap.String("dir", cfg.Dir),
		zap.Bool("read", cfg.Read),
		zap.Bool("write", cfg.Write),
		zap.Bool("compress", cfg.Compress),
		zap.Int("entries", c.entries.Size()),
		zap.Int64("bytes", c.total.Load()),
		zap.Int64("max_bytes", cfg.MaxBytes))
	c.evict()
	return c, nil
}

// Close releases the codec resources.
func (c *Cache) Close() {
	if c.enc != nil {
		_ = c.enc.Close()
	}
	if c.dec != nil {
		c.dec.Close()
	}
}

// Size returns the bytes currently accounted for.
func (c *Cache) Size() int64 { return c.total.Load() }

// Len returns the number of entries.
func (c *Cache) Len() int { return c.entries.Size() }

// Has reports whether an entry for (height, kind) is indexed.
func (c *Cache) Has(height int64, kind Kind) bool {
	_, ok := c.entries.Load(fileName(height, kind, true))
	if !ok {
		_, ok = c.entries.Load(fileName(height, kind, false))
	}
	return ok
}

// Get decodes the entry for (height, kind) into out. Any failure is a miss.
func (c *Cache) Get(height int64, kind Kind, out any) bool {
	if !c.cfg.Read {
		return false
	}
	for _, compressed := range []bool{c.cfg.Compress, !c.cfg.Compress} {
		name := fileName(height, kind, compressed)
		if _, ok := c.entries.Load(name); !ok {
			continue
		}
		if err := c.read(name, compressed, out); err != nil {
			c.logger.Debug("Block cache read failed",
				zap.Int64("height", height),
				zap.String("kind", string(kind)),
				zap.Error(err))
			c.remove(name)
			return false
		}
		return true
	}
	return false
}

func (c *Cache) read(name string, compressed bool, out any) error {
	data, err := os.ReadFile(filepath.Join(c.cfg.Dir, name))
	if err != nil {
		return err
	}
	if compressed {
		if data, err = c.dec.DecodeAll(data, nil); err != nil {
			return fmt.Errorf("decompress: %w", err)
		}
	}
	return json.Unmarshal(data, out)
}

// Put stores v for (height, kind) and evicts the lowest heights while the cache
// is over budget.
func (c *Cache) Put(height int64, kind Kind, v any) error {
	if !c.cfg.Write {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("blockcache: encode %d_%s: %w", height, kind, err)
	}
	if c.cfg.Compress {
		data = c.enc.EncodeAll(data, make([]byte, 0, len(data)/4))
	}

	name := fileName(height, kind, c.cfg.Compress)
	if err := writeAtomic(c.cfg.Dir, name, data); err != nil {
		return fmt.Errorf("blockcache: write %s: %w", name, err)
	}
	c.track(name, entry{height: height, size: int64(len(data))})
	c.evict()
	return nil
}

func (c *Cache) track(name string, e entry) {
	prev, loaded := c.entries.LoadAndStore(name, e)
	if loaded {
		c.total.Add(e.size - prev.size)
		return
	}
	c.total.Add(e.size)
	c.mu.Lock()
	heap.Push(&c.order, heapItem{height: e.height, name: name})
	c.mu.Unlock()
}

func (c *Cache) remove(name string) {
	e, ok := c.entries.LoadAndDelete(name)
	if !ok {
		return
	}
	c.total.Add(-e.size)
	if err := os.Remove(filepath.Join(c.cfg.Dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("Block cache remove failed", zap.String("file", name), zap.Error(err))
	}
}

// evict drops the lowest-height entries until the cache fits its budget.
// A MaxBytes of zero or less disables eviction.
func (c *Cache) evict() {
	if c.cfg.MaxBytes <= 0 {
		return
	}
	for c.total.Load() > c.cfg.MaxBytes {
		c.mu.Lock()
		if c.order.Len() == 0 {
			c.mu.Unlock()
			return
		}
		item := heap.Pop(&c.order).(heapItem)
		c.mu.Unlock()

		// entries removed after a failed read are still queued; skip them
		if _, ok := c.entries.Load(item.name); !ok {
			continue
		}
		c.remove(item.name)
		c.logger.Debug("Block cache evicted", zap.String("file", item.name), zap.Int64("height", item.height))
	}
}

func (c *Cache) rebuild() error {
	files, err := os.ReadDir(c.cfg.Dir)
	if err != nil {
		return fmt.Errorf("blockcache: list %s: %w", c.cfg.Dir, err)
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if strings.HasPrefix(f.Name(), ".tmp-") {
			_ = os.Remove(filepath.Join(c.cfg.Dir, f.Name()))
			continue
		}
		height, ok := parseFileName(f.Name())
		if !ok {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		c.track(f.Name(), entry{height: height, size: info.Size()})
	}
	return nil
}

func fileName(height int64, kind Kind, compressed bool) string {
	ext := jsonExt
	if compressed {
		ext = zstExt
	}
	return strconv.FormatInt(height, 10) + "_" + string(kind) + ext
}

// parseFileName extracts the height from "<height>_<kind>.json[.zst]".
func parseFileName(name string) (int64, bool) {
	if !strings.HasSuffix(name, jsonExt) && !strings.HasSuffix(name, zstExt) {
		return 0, false
	}
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, false
	}
	height, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, false
	}
	return height, true
}

func writeAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-"+name+"-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

type heapItem struct {
	height int64
	name   string
}

// heightHeap is a min-heap on height.
type heightHeap []heapItem

func (h heightHeap) Len() int           { return len(h) }
func (h heightHeap) Less(i, j int) bool { return h[i].height < h[j].height }
func (h heightHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *heightHeap) Push(x any)        { *h = append(*h, x.(heapItem)) }
func (h *heightHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
