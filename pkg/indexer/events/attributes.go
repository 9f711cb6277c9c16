package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/indexer/entities"
	"github.com/lavanet/jsinfo-indexer/pkg/rpc"
	"github.com/lavanet/jsinfo-indexer/pkg/utils"
)

const (
	nilSentinel = "<nil>"

	// fulltextMaxLength caps the attribute JSON copied into each row.
	fulltextMaxLength = 10000
	errorMaxLength    = 2000
)

// ErrVerifyFailed means a required field was absent after parsing. The event is
// dropped without a row.
var ErrVerifyFailed = errors.New("event verification failed")

// AttributeError is a malformed or oversized attribute. It turns the whole event
// into one ErrorEvent row.
type AttributeError struct {
	Caller string
	Key    string
	Err    error
}

func (e *AttributeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Caller, e.Err)
	}
	return fmt.Sprintf("%s: attribute %q: %v", e.Caller, e.Key, e.Err)
}

func (e *AttributeError) Unwrap() error { return e.Err }

// Config bounds attribute processing.
type Config struct {
	MaxLength int
	MaxKeys   int
}

func DefaultConfig() Config {
	return Config{MaxLength: 5000, MaxKeys: 5000}
}

// Context is the block scope an event is parsed in. TxHash is nil for
// begin/end block events.
type Context struct {
	Height   int64
	Time     time.Time
	TxHash   *string
	Facts    *indexermodels.Facts
	Entities *entities.Resolver
}

// Input is what a parser sees for one event.
type Input struct {
	*Context
	Event  rpc.Event
	Caller string

	cfg      Config
	fulltext *string
}

// NormalizeKey strips a positional suffix such as ".0" or ".17" from a key.
func NormalizeKey(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[:i]
	}
	return key
}

// Attributes runs the shared attribute contract and calls handle for every
// surviving attribute with its normalized key. Repeated keys (for example CU.0
// and CU.1) reach handle in emission order, so the last value wins.
func (in *Input) Attributes(handle func(key, value string) error, skipKeys ...string) error {
	attrs := in.Event.Attributes
	if len(attrs) > in.cfg.MaxKeys {
		return &AttributeError{Caller: in.Caller, Err: fmt.Errorf("too many attributes: %d > %d", len(attrs), in.cfg.MaxKeys)}
	}

	dict := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		if attr.Key == "" || attr.Value == "" || attr.Key == nilSentinel || attr.Value == nilSentinel {
			continue
		}
		key := NormalizeKey(attr.Key)
		if contains(skipKeys, key) {
			continue
		}
		if len(attr.Key) > in.cfg.MaxLength {
			return &AttributeError{Caller: in.Caller, Key: utils.Truncate(attr.Key, 64), Err: fmt.Errorf("key length %d exceeds %d", len(attr.Key), in.cfg.MaxLength)}
		}
		if len(attr.Value) > in.cfg.MaxLength {
			return &AttributeError{Caller: in.Caller, Key: attr.Key, Err: fmt.Errorf("value length %d exceeds %d", len(attr.Value), in.cfg.MaxLength)}
		}
		if len(key) < 2 {
			return &AttributeError{Caller: in.Caller, Key: attr.Key, Err: fmt.Errorf("normalized key %q is too short", key)}
		}

		dict[attr.Key] = attr.Value
		if err := handle(key, attr.Value); err != nil {
			return &AttributeError{Caller: in.Caller, Key: attr.Key, Err: err}
		}
	}

	if b, err := json.Marshal(dict); err == nil {
		in.fulltext = ptr(utils.Truncate(string(b), fulltextMaxLength))
	}
	return nil
}

// NewEvent returns a generic row stamped with the block scope.
func (in *Input) NewEvent(t indexermodels.EventType) *indexermodels.Event {
	return &indexermodels.Event{
		EventType: t,
		Tx:        in.TxHash,
		BlockID:   in.Height,
		Timestamp: in.Time,
	}
}

// Verify returns ErrVerifyFailed unless ok.
func (in *Input) Verify(ok bool) error {
	if !ok {
		return fmt.Errorf("%s: %w", in.Caller, ErrVerifyFailed)
	}
	return nil
}

// AddEvent stages the tx and appends e, filling fulltext with the attribute JSON
// when the parser did not set it.
func (in *Input) AddEvent(e *indexermodels.Event) {
	if e.Fulltext == nil {
		e.Fulltext = in.fulltext
	}
	in.Entities.SetTx(in.TxHash, in.Height)
	in.Facts.Events = append(in.Facts.Events, e)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
