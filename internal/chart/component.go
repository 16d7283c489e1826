// Package chart owns the selection state and the chart state of one page and
// drives a fetch cycle every time the selection is replaced.
package chart

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"btcchart/internal/collector"
	"btcchart/internal/model"
	"btcchart/internal/recorder"
)

// Snapshot is what listeners see after every selection change or publish.
type Snapshot struct {
	Selection  model.Selection  `json:"selection"`
	Chart      model.ChartState `json:"chart"`
	Generation uint64           `json:"generation"`
	Seq        uint64           `json:"seq"`
}

// Listener is called outside the component lock, one snapshot at a time and
// in increasing Seq order. It must not call back into the component.
type Listener func(Snapshot)

// Component holds SelectionState and ChartState. Every cycle carries a
// generation number; a result is published only when no newer cycle has
// published already, so the last started cycle wins regardless of the order
// in which responses arrive.
type Component struct {
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Timeout   time.Duration

	mu        sync.Mutex
	selection model.Selection
	state     model.ChartState
	nextGen   uint64
	published uint64
	listeners map[int]Listener
	nextID    int
	seq       uint64

	notifyMu  sync.Mutex
	delivered uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Component seeded with USD over one month and an empty chart.
func New(col *collector.Collector, rec recorder.Recorder, timeout time.Duration) *Component {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Component{
		Collector: col,
		Recorder:  rec,
		Timeout:   timeout,
		selection: model.DefaultSelection(),
		state:     model.EmptyChartState(),
		listeners: make(map[int]Listener),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// ToggleCurrency adds or removes code from the active set. Adding a present
// code or removing an absent one leaves the set as is, but the selection is
// still replaced and a new cycle starts.
func (c *Component) ToggleCurrency(code model.Currency, enabled bool) error {
	code, err := model.ParseCurrency(string(code))
	if err != nil {
		return err
	}

	c.refresh(func(sel *model.Selection) {
		switch {
		case enabled && !sel.Has(code):
			sel.Currencies = append(sel.Currencies, code)
		case !enabled:
			sel.Currencies = without(sel.Currencies, code)
		}
	})
	return nil
}

// SetTimeRange replaces the active range. Setting the current value again
// still starts a new cycle.
func (c *Component) SetTimeRange(r model.TimeRange) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %d", model.ErrUnsupportedTimeRange, int(r))
	}

	c.refresh(func(sel *model.Selection) {
		sel.Range = r
	})
	return nil
}

// Refresh starts a cycle for the current selection. It is called at mount and
// by the scheduler.
func (c *Component) Refresh() {
	c.refresh(nil)
}

// Selection returns a copy of the current selection.
func (c *Component) Selection() model.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Clone()
}

// ChartState returns a copy of the last published chart.
func (c *Component) ChartState() model.ChartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Snapshot returns selection and chart taken under one lock.
func (c *Component) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(false)
}

// Subscribe registers fn and returns a function that removes it.
func (c *Component) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Wait blocks until every started cycle has settled.
func (c *Component) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight cycles and waits for them. Nothing is published afterwards.
func (c *Component) Close() {
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
}

// snapshotLocked copies the current state. A snapshot taken for delivery
// gets the next sequence number.
func (c *Component) snapshotLocked(deliver bool) Snapshot {
	if deliver {
		c.seq++
	}
	return Snapshot{Selection: c.selection.Clone(), Chart: c.state.Clone(), Generation: c.published, Seq: c.seq}
}

// refresh applies mutate to a copy of the selection, installs it and starts a
// cycle, all under one lock.
func (c *Component) refresh(mutate func(*model.Selection)) {
	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	if mutate != nil {
		next := c.selection.Clone()
		mutate(&next)
		c.selection = next
	}
	c.nextGen++
	gen := c.nextGen
	sel := c.selection.Clone()
	snap := c.snapshotLocked(true)
	listeners := c.listenersLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	c.notify(listeners, snap)
	go c.runCycle(gen, sel)
}

func (c *Component) runCycle(gen uint64, sel model.Selection) {
	defer c.wg.Done()

	ctx := c.ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	start := time.Now()
	state, err := c.Collector.Collect(ctx, sel)
	evt := &recorder.CycleEvent{
		Generation: gen,
		Currencies: sel.Currencies,
		Range:      sel.Range,
		Duration:   time.Since(start),
		At:         start,
	}

	if err != nil {
		if c.ctx.Err() != nil {
			return
		}
		log.Printf("[ERROR] chart cycle %d (%v, %s): %v", gen, sel.Currencies, sel.Range.Label(), err)
		evt.Status = recorder.StatusFailed
		evt.Error = err.Error()
		c.record(evt)
		return
	}

	evt.Points = collector.PointCount(state)

	c.mu.Lock()
	if gen < c.published || c.ctx.Err() != nil {
		c.mu.Unlock()
		log.Printf("[WARN] chart cycle %d discarded, cycle %d already published", gen, c.published)
		evt.Status = recorder.StatusStale
		c.record(evt)
		return
	}
	c.state = *state
	c.published = gen
	snap := c.snapshotLocked(true)
	listeners := c.listenersLocked()
	c.mu.Unlock()

	evt.Status = recorder.StatusOK
	c.record(evt)
	c.notify(listeners, snap)
}

func (c *Component) record(evt *recorder.CycleEvent) {
	if err := c.Recorder.RecordCycle(evt); err != nil {
		log.Printf("[ERROR] record cycle %d: %v", evt.Generation, err)
	}
}

func (c *Component) listenersLocked() []Listener {
	out := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		out = append(out, l)
	}
	return out
}

// notify delivers snap unless a newer snapshot has already been delivered.
func (c *Component) notify(listeners []Listener, snap Snapshot) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if snap.Seq <= c.delivered {
		return
	}
	c.delivered = snap.Seq
	for _, l := range listeners {
		l(snap)
	}
}

func without(list []model.Currency, code model.Currency) []model.Currency {
	out := list[:0]
	for _, c := range list {
		if c != code {
			out = append(out, c)
		}
	}
	return out
}
