package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	json "github.com/goccy/go-json"

	"github.com/rickgao/paradex-data/paradex"
)

// ErrUnknownHandle is returned for operations on a handle the manager
// does not track, for example a double unsubscribe.
var ErrUnknownHandle = errors.New("unknown subscription handle")

// Manager supervises one WebSocket connection and the subscriptions
// on it. Subscriptions survive disconnects: the manager reconnects
// with exponential backoff and replays every registered channel.
//
// All subscription state is owned by a single goroutine; the exported
// methods communicate with it over an ops channel, so they are safe
// for concurrent use.
type Manager struct {
	cfg    ManagerConfig
	logger *slog.Logger

	// dial is swapped in tests to inject a fake transport.
	dial func(ctx context.Context) (Client, error)

	ops     chan any
	stopped chan struct{} // closed when shutdown begins
	done    chan struct{} // closed when the owner goroutine exits
	drained chan struct{} // closed when every handler has returned

	started   atomic.Bool
	stopOnce  sync.Once
	doneOnce  sync.Once
	drainOnce sync.Once

	stateMu sync.RWMutex
	state   ConnectionState
}

// ManagerStats is a snapshot of the manager's state.
type ManagerStats struct {
	State         ConnectionState
	Subscriptions int
	Channels      int
}

type subscribeResult struct {
	handle Handle
	err    error
}

type opSubscribe struct {
	channel paradex.Channel
	handler Handler
	reply   chan subscribeResult
}

type opUnsubscribe struct {
	handle Handle
	reply  chan error
}

type waitResult struct {
	confirmed <-chan struct{}
	err       error
}

type opWait struct {
	handle Handle
	reply  chan waitResult
}

type opStats struct {
	reply chan ManagerStats
}

// ack kinds for pending request correlation.
const (
	ackSubscribe = iota
	ackUnsubscribe
	ackAuth
)

type pendingAck struct {
	kind   int
	name   string
	replay bool
}

// NewManager creates a subscription manager. Zero config fields fall
// back to DefaultManagerConfig values.
func NewManager(cfg ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultManagerConfig()
	if cfg.ReconnectBaseWait <= 0 {
		cfg.ReconnectBaseWait = def.ReconnectBaseWait
	}
	if cfg.ReconnectMaxWait <= 0 {
		cfg.ReconnectMaxWait = def.ReconnectMaxWait
	}
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = def.DispatchBuffer
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = def.PingTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}

	m := &Manager{
		cfg:     cfg,
		logger:  logger,
		ops:     make(chan any),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
		state:   StateDisconnected,
	}
	m.dial = func(ctx context.Context) (Client, error) {
		cli := NewClient(ClientConfig{
			URL:          cfg.URL,
			PingTimeout:  cfg.PingTimeout,
			WriteTimeout: cfg.WriteTimeout,
			BufferSize:   cfg.BufferSize,
		}, logger)
		if err := cli.Connect(ctx); err != nil {
			return nil, err
		}
		return cli, nil
	}
	return m
}

// Start launches the supervisor goroutine. The manager runs until
// Stop is called or ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	m.started.Store(true)
	go m.run(ctx)
}

// Stop shuts the manager down: a final unsubscribed event is queued
// for every handler and the connection closes. Stop returns once the
// supervisor has exited; it does not wait for handlers to finish, so
// a handler may itself call Stop without deadlocking. Use Done to
// wait for the queues to drain. Idempotent; calls after the first are
// no-ops. Safe to call on a manager that was never started.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopped)
	})
	if !m.started.Load() {
		m.drainOnce.Do(func() { close(m.drained) })
		m.doneOnce.Do(func() { close(m.done) })
	}
	<-m.done
}

// Done is closed once every handler has returned after Stop.
func (m *Manager) Done() <-chan struct{} {
	return m.drained
}

// State returns the supervisor's connection state.
func (m *Manager) State() ConnectionState {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

func (m *Manager) setState(s ConnectionState) {
	m.stateMu.Lock()
	m.state = s
	m.stateMu.Unlock()
}

// Subscribe registers a handler for a channel and, when connected,
// sends the wire subscribe. The returned handle identifies the
// subscription for Unsubscribe and WaitConfirmed. Registration
// survives disconnects until explicitly unsubscribed.
func (m *Manager) Subscribe(ctx context.Context, ch paradex.Channel, handler Handler) (Handle, error) {
	if err := ch.Validate(); err != nil {
		return Handle{}, err
	}
	if handler == nil {
		return Handle{}, errors.New("nil handler")
	}
	if ch.Private() && m.cfg.Tokens == nil {
		return Handle{}, fmt.Errorf("%w: %s", ErrAuthRequired, ch.Name())
	}

	op := opSubscribe{channel: ch, handler: handler, reply: make(chan subscribeResult, 1)}
	if err := m.submit(ctx, op); err != nil {
		return Handle{}, err
	}
	select {
	case res := <-op.reply:
		return res.handle, res.err
	case <-ctx.Done():
		return Handle{}, ctx.Err()
	case <-m.stopped:
		select {
		case res := <-op.reply:
			return res.handle, res.err
		default:
			return Handle{}, ErrManagerStopped
		}
	}
}

// Unsubscribe removes a subscription. The handler receives a final
// unsubscribed event and its queue drains before the handle is
// forgotten. Unsubscribing an unknown or already-removed handle
// returns ErrUnknownHandle.
func (m *Manager) Unsubscribe(ctx context.Context, h Handle) error {
	op := opUnsubscribe{handle: h, reply: make(chan error, 1)}
	if err := m.submit(ctx, op); err != nil {
		return err
	}
	select {
	case err := <-op.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stopped:
		select {
		case err := <-op.reply:
			return err
		default:
			return ErrManagerStopped
		}
	}
}

// WaitConfirmed blocks until the venue acknowledges the subscription
// or ctx expires.
func (m *Manager) WaitConfirmed(ctx context.Context, h Handle) error {
	op := opWait{handle: h, reply: make(chan waitResult, 1)}
	if err := m.submit(ctx, op); err != nil {
		return err
	}

	var res waitResult
	select {
	case res = <-op.reply:
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stopped:
		return ErrManagerStopped
	}
	if res.err != nil {
		return res.err
	}

	select {
	case <-res.confirmed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stopped:
		return ErrManagerStopped
	}
}

// Stats returns a snapshot of subscription counts.
func (m *Manager) Stats() ManagerStats {
	op := opStats{reply: make(chan ManagerStats, 1)}
	if err := m.submit(context.Background(), op); err != nil {
		return ManagerStats{State: StateStopped}
	}
	select {
	case s := <-op.reply:
		return s
	case <-m.stopped:
		return ManagerStats{State: StateStopped}
	}
}

func (m *Manager) submit(ctx context.Context, op any) error {
	select {
	case m.ops <- op:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stopped:
		return ErrManagerStopped
	}
}

// run is the owner goroutine: the only code that touches the registry,
// the pending-ack table, and the client.
func (m *Manager) run(ctx context.Context) {
	defer m.doneOnce.Do(func() { close(m.done) })

	reg := newRegistry()
	pending := make(map[uint64]pendingAck)
	var nextID uint64

	var (
		cli  Client
		msgs <-chan TimestampedMessage
		errs <-chan error
	)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.cfg.ReconnectBaseWait
	bo.MaxInterval = m.cfg.ReconnectMaxWait
	attempts := 0

	// Immediate first connect.
	retry := time.NewTimer(0)
	defer retry.Stop()

	disconnect := func() {
		if cli != nil {
			cli.Close()
			cli, msgs, errs = nil, nil, nil
		}
		m.setState(StateDisconnected)
		for id := range pending {
			delete(pending, id)
		}
		reg.markAllPending()
	}

	for {
		select {
		case <-m.stopped:
			m.shutdown(cli, reg)
			return

		case <-ctx.Done():
			m.stopOnce.Do(func() { close(m.stopped) })
			m.shutdown(cli, reg)
			return

		case <-retry.C:
			m.setState(StateConnecting)
			c, err := m.connect(ctx, reg, pending, &nextID)
			if err != nil {
				attempts++
				m.logger.Warn("connect failed",
					"attempt", attempts,
					"error", err,
				)
				if m.cfg.MaxReconnectAttempts > 0 && attempts >= m.cfg.MaxReconnectAttempts {
					m.logger.Error("reconnect budget exhausted, stopping",
						"attempts", attempts,
					)
					m.failAll(reg, fmt.Errorf("%w: %d consecutive connect failures", ErrManagerStopped, attempts))
					m.stopOnce.Do(func() { close(m.stopped) })
					m.shutdown(nil, reg)
					return
				}
				m.setState(StateDisconnected)
				retry.Reset(bo.NextBackOff())
				continue
			}
			cli = c
			msgs, errs = cli.Messages(), cli.Errors()
			m.setState(StateConnected)
			bo.Reset()
			attempts = 0

		case err := <-errs:
			m.logger.Warn("connection lost", "error", err)
			disconnect()
			m.broadcast(reg, Event{Type: EventDisconnected, Err: err, ReceivedAt: time.Now()})
			retry.Reset(bo.NextBackOff())

		case msg := <-msgs:
			m.handleFrame(reg, pending, msg)

		case raw := <-m.ops:
			switch op := raw.(type) {
			case opSubscribe:
				op.reply <- m.handleSubscribe(reg, pending, &nextID, cli, op)
			case opUnsubscribe:
				op.reply <- m.handleUnsubscribe(reg, pending, &nextID, cli, op.handle)
			case opWait:
				if sub, ok := reg.get(op.handle); ok {
					op.reply <- waitResult{confirmed: sub.confirmed}
				} else {
					op.reply <- waitResult{err: ErrUnknownHandle}
				}
			case opStats:
				op.reply <- ManagerStats{
					State:         m.State(),
					Subscriptions: reg.len(),
					Channels:      len(reg.names()),
				}
			}
		}
	}
}

// connect dials, authenticates when a token source is configured, and
// replays every registered channel.
func (m *Manager) connect(ctx context.Context, reg *registry, pending map[uint64]pendingAck, nextID *uint64) (Client, error) {
	cli, err := m.dial(ctx)
	if err != nil {
		return nil, err
	}

	// Acks registered by a failed attempt must not survive it: their
	// ids would collide with nothing and leak across retries.
	var sent []uint64
	fail := func(err error) (Client, error) {
		for _, id := range sent {
			delete(pending, id)
		}
		cli.Close()
		return nil, err
	}

	if m.cfg.Tokens != nil {
		token, err := m.cfg.Tokens.Token(ctx)
		if err != nil {
			return fail(fmt.Errorf("fetch auth token: %w", err))
		}
		id := nextRequestID(nextID)
		if err := sendRequest(cli, request{
			JSONRPC: "2.0",
			Method:  "auth",
			Params:  requestParams{Bearer: token},
			ID:      id,
		}); err != nil {
			return fail(fmt.Errorf("send auth: %w", err))
		}
		pending[id] = pendingAck{kind: ackAuth}
		sent = append(sent, id)
	}

	for _, name := range reg.names() {
		id := nextRequestID(nextID)
		if err := sendRequest(cli, request{
			JSONRPC: "2.0",
			Method:  "subscribe",
			Params:  requestParams{Channel: name},
			ID:      id,
		}); err != nil {
			return fail(fmt.Errorf("resubscribe %s: %w", name, err))
		}
		pending[id] = pendingAck{kind: ackSubscribe, name: name, replay: true}
		sent = append(sent, id)
	}

	m.logger.Info("websocket session established",
		"url", m.cfg.URL,
		"channels", len(reg.names()),
	)
	return cli, nil
}

func (m *Manager) handleSubscribe(reg *registry, pending map[uint64]pendingAck, nextID *uint64, cli Client, op opSubscribe) subscribeResult {
	sub := &subscription{
		handle:    newHandle(),
		channel:   op.channel,
		handler:   op.handler,
		queue:     newDispatchQueue(m.cfg.DispatchBuffer, op.handler, m.logger),
		confirmed: make(chan struct{}),
	}

	first := reg.add(sub)
	name := op.channel.Name()

	if !first {
		// The channel stream already exists; share its confirmation.
		for _, peer := range reg.forName(name) {
			if peer.handle != sub.handle && peer.acked {
				sub.markConfirmed()
				sub.queue.push(Event{Type: EventSubscribed, Channel: sub.channel, ReceivedAt: time.Now()})
				break
			}
		}
		return subscribeResult{handle: sub.handle}
	}

	if cli != nil {
		id := nextRequestID(nextID)
		if err := sendRequest(cli, request{
			JSONRPC: "2.0",
			Method:  "subscribe",
			Params:  requestParams{Channel: name},
			ID:      id,
		}); err != nil {
			// The connection error surfaces through the error channel;
			// the subscription stays registered for replay.
			m.logger.Warn("subscribe send failed", "channel", name, "error", err)
		} else {
			pending[id] = pendingAck{kind: ackSubscribe, name: name}
		}
	}
	return subscribeResult{handle: sub.handle}
}

func (m *Manager) handleUnsubscribe(reg *registry, pending map[uint64]pendingAck, nextID *uint64, cli Client, h Handle) error {
	sub, last, ok := reg.remove(h)
	if !ok {
		return ErrUnknownHandle
	}

	sub.queue.push(Event{Type: EventUnsubscribed, Channel: sub.channel, ReceivedAt: time.Now()})
	// Drain off the owner goroutine: the handler may call back into
	// the manager while finishing.
	go sub.queue.close()

	if last && cli != nil {
		name := sub.channel.Name()
		id := nextRequestID(nextID)
		if err := sendRequest(cli, request{
			JSONRPC: "2.0",
			Method:  "unsubscribe",
			Params:  requestParams{Channel: name},
			ID:      id,
		}); err != nil {
			m.logger.Warn("unsubscribe send failed", "channel", name, "error", err)
		} else {
			pending[id] = pendingAck{kind: ackUnsubscribe, name: name}
		}
	}
	return nil
}

// handleFrame classifies one incoming frame: responses correlate to
// pending requests by id, notifications carry channel data.
func (m *Manager) handleFrame(reg *registry, pending map[uint64]pendingAck, msg TimestampedMessage) {
	var f frame
	if err := json.Unmarshal(msg.Data, &f); err != nil {
		m.logger.Warn("undecodable frame", "error", err)
		return
	}

	switch {
	case f.ID != nil:
		m.handleAck(reg, pending, f, msg.ReceivedAt)

	case f.Method == "subscription":
		m.handleData(reg, f.Params, msg.Data, msg.ReceivedAt)

	default:
		m.logger.Warn("unrecognized frame", "method", f.Method)
	}
}

func (m *Manager) handleAck(reg *registry, pending map[uint64]pendingAck, f frame, at time.Time) {
	pa, ok := pending[*f.ID]
	if !ok {
		m.logger.Warn("response with unknown id", "id", *f.ID)
		return
	}
	delete(pending, *f.ID)

	switch pa.kind {
	case ackAuth:
		if f.Error != nil {
			m.logger.Error("authentication rejected",
				"code", f.Error.Code,
				"message", f.Error.Message,
			)
			return
		}
		m.logger.Debug("authenticated")

	case ackSubscribe:
		subs := append([]*subscription(nil), reg.forName(pa.name)...)
		if f.Error != nil {
			err := fmt.Errorf("%w: %s (code %d)", ErrSubscriptionRejected, f.Error.Message, f.Error.Code)
			m.logger.Warn("subscribe rejected", "channel", pa.name, "error", err)
			for _, sub := range subs {
				sub.queue.push(Event{Type: EventError, Channel: sub.channel, Err: err, ReceivedAt: at})
				reg.remove(sub.handle)
				go sub.queue.close()
			}
			return
		}
		evType := EventSubscribed
		if pa.replay {
			evType = EventResubscribed
		}
		for _, sub := range subs {
			sub.markConfirmed()
			sub.queue.push(Event{Type: evType, Channel: sub.channel, ReceivedAt: at})
		}
		m.logger.Debug("subscription confirmed", "channel", pa.name, "replay", pa.replay)

	case ackUnsubscribe:
		if f.Error != nil {
			m.logger.Warn("unsubscribe rejected",
				"channel", pa.name,
				"message", f.Error.Message,
			)
			return
		}
		m.logger.Debug("unsubscribe confirmed", "channel", pa.name)
	}
}

func (m *Manager) handleData(reg *registry, params notificationParams, raw []byte, at time.Time) {
	ch, ok := reg.channelFor(params.Channel)
	if !ok {
		// Late frames for a channel we just unsubscribed are expected.
		m.logger.Debug("data for unregistered channel", "channel", params.Channel)
		return
	}

	payload, err := paradex.DecodePayload(ch.Kind, params.Data)
	if err != nil {
		perr := fmt.Errorf("%w: decode %s payload: %v", ErrProtocol, params.Channel, err)
		m.logger.Warn("malformed payload", "channel", params.Channel, "error", err)
		for _, sub := range reg.forName(params.Channel) {
			sub.queue.push(Event{Type: EventError, Channel: sub.channel, Err: perr, Raw: params.Data, ReceivedAt: at})
		}
		return
	}

	for _, sub := range reg.forName(params.Channel) {
		sub.queue.push(Event{
			Type:       EventData,
			Channel:    sub.channel,
			Payload:    payload,
			Raw:        params.Data,
			ReceivedAt: at,
		})
	}
}

// broadcast pushes an event to every subscription.
func (m *Manager) broadcast(reg *registry, ev Event) {
	for _, sub := range reg.all() {
		scoped := ev
		scoped.Channel = sub.channel
		sub.queue.push(scoped)
	}
}

// failAll delivers a terminal error to every subscription.
func (m *Manager) failAll(reg *registry, err error) {
	m.broadcast(reg, Event{Type: EventError, Err: err, ReceivedAt: time.Now()})
}

// shutdown closes the connection and the dispatch queues. Handlers
// may react to their final event by calling Stop, so the supervisor
// never waits on them; Done is closed once they have all returned.
func (m *Manager) shutdown(cli Client, reg *registry) {
	if cli != nil {
		cli.Close()
	}
	subs := reg.all()
	now := time.Now()
	for _, sub := range subs {
		sub.queue.push(Event{Type: EventUnsubscribed, Channel: sub.channel, ReceivedAt: now})
		sub.queue.shut()
	}
	go func() {
		for _, sub := range subs {
			sub.queue.wait()
		}
		m.drainOnce.Do(func() { close(m.drained) })
	}()
	m.setState(StateStopped)
	m.logger.Info("subscription manager stopped")
}

func nextRequestID(nextID *uint64) uint64 {
	*nextID++
	return *nextID
}

func sendRequest(cli Client, req request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return cli.Send(data)
}
