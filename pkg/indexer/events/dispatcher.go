package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/rpc"
	"github.com/lavanet/jsinfo-indexer/pkg/utils"
)

// Outcomes reported to a Recorder.
const (
	OutcomeParsed       = "parsed"
	OutcomeDropped      = "dropped"
	OutcomeError        = "error"
	OutcomeIgnored      = "ignored"
	OutcomeUnidentified = "unidentified"
)

// Recorder observes dispatch outcomes, typically for metrics.
type Recorder interface {
	ObserveEvent(eventType, outcome string)
}

type parseFunc func(in *Input) error

type parser struct {
	caller string
	fn     parseFunc
}

// Dispatcher routes raw chain events to their parsers.
type Dispatcher struct {
	cfg      Config
	logger   *zap.Logger
	recorder Recorder
	parsers  map[string]parser
}

// NewDispatcher builds a dispatcher with every known parser registered.
// recorder may be nil.
func NewDispatcher(cfg Config, logger *zap.Logger, recorder Recorder) *Dispatcher {
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultConfig().MaxLength
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = DefaultConfig().MaxKeys
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		parsers:  registry(),
	}
}

// Known reports whether eventType has a dedicated parser.
func (d *Dispatcher) Known(eventType string) bool {
	_, ok := d.parsers[strings.TrimPrefix(eventType, "/")]
	return ok
}

// Dispatch parses one event into c. It never fails: malformed events become an
// ErrorEvent row, incomplete ones are dropped and unknown ones become
// an UnidentifiedEvent row.
func (d *Dispatcher) Dispatch(c *Context, evt rpc.Event) {
	typ := strings.TrimPrefix(evt.Type, "/")
	if IsIgnored(typ) {
		d.observe(typ, OutcomeIgnored)
		return
	}

	p, ok := d.parsers[typ]
	if !ok {
		d.unidentified(c, typ, evt)
		return
	}

	in := &Input{Context: c, Event: evt, Caller: p.caller, cfg: d.cfg}
	err := d.run(p, in)
	switch {
	case err == nil:
		d.observe(typ, OutcomeParsed)
	case errors.Is(err, ErrVerifyFailed):
		d.observe(typ, OutcomeDropped)
		d.logger.Debug("Event dropped",
			zap.Int64("height", c.Height),
			zap.String("type", typ),
			zap.String("caller", p.caller))
	default:
		d.observe(typ, OutcomeError)
		d.logger.Warn("Event attribute error",
			zap.Int64("height", c.Height),
			zap.String("type", typ),
			zap.String("caller", p.caller),
			zap.Error(err))
		d.errorEvent(c, typ, p.caller, evt, err)
	}
}

// run isolates a parser so a panic cannot abort the block.
func (d *Dispatcher) run(p parser, in *Input) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &AttributeError{Caller: p.caller, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return p.fn(in)
}

func (d *Dispatcher) observe(typ, outcome string) {
	if d.recorder != nil {
		d.recorder.ObserveEvent(typ, outcome)
	}
}

func (d *Dispatcher) errorEvent(c *Context, typ, caller string, evt rpc.Event, cause error) {
	payload, _ := json.Marshal(map[string]string{
		"type":   typ,
		"caller": caller,
		"error":  utils.Truncate(cause.Error(), errorMaxLength),
	})
	row := &indexermodels.Event{
		EventType: indexermodels.EventError,
		Tx:        c.TxHash,
		BlockID:   c.Height,
		T1:        ptr(string(payload)),
		T2:        ptr(caller),
		Fulltext:  rawAttributes(evt),
		Timestamp: c.Time,
	}
	c.Entities.SetTx(c.TxHash, c.Height)
	c.Facts.Events = append(c.Facts.Events, row)
}

func (d *Dispatcher) unidentified(c *Context, typ string, evt rpc.Event) {
	d.observe(typ, OutcomeUnidentified)
	d.logger.Info("Unidentified event",
		zap.Int64("height", c.Height),
		zap.String("type", typ),
		zap.Int("attributes", len(evt.Attributes)))

	payload := map[string]string{}
	for _, attr := range evt.Attributes {
		payload[attr.Key] = attr.Value
	}
	payload["type"] = typ
	b, _ := json.Marshal(payload)

	row := &indexermodels.Event{
		EventType: indexermodels.EventUnidentified,
		Tx:        c.TxHash,
		BlockID:   c.Height,
		T1:        ptr(utils.Truncate(string(b), fulltextMaxLength)),
		Timestamp: c.Time,
	}
	c.Entities.SetTx(c.TxHash, c.Height)
	c.Facts.Events = append(c.Facts.Events, row)
}

func rawAttributes(evt rpc.Event) *string {
	b, err := json.Marshal(evt.Attributes)
	if err != nil {
		return nil
	}
	return ptr(utils.Truncate(string(b), fulltextMaxLength))
}
