package smartspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	frameDelimiter = "\n\n"
	dataPrefix     = "data:"
	readChunkSize  = 32 * 1024
)

// frameIngester extracts complete records from a buffer that only grows.
// Every call receives the whole buffer so far; records already returned by
// an earlier call are skipped and a trailing record without its delimiter is
// held back until a later call completes it.
type frameIngester struct {
	emitted int
}

// Progress returns the records completed since the previous call
func (f *frameIngester) Progress(buffer string) []string {
	buffer = strings.ReplaceAll(buffer, "\r\n", "\n")

	parts := strings.Split(buffer, frameDelimiter)
	complete := parts[:len(parts)-1]

	if len(complete) <= f.emitted {
		return nil
	}

	records := complete[f.emitted:]
	f.emitted = len(complete)

	return records
}

// recordPayload joins the data lines of one record. Comment lines, event
// names and ids are dropped.
func recordPayload(record string) string {
	var data []string
	for _, line := range strings.Split(record, "\n") {
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		value := strings.TrimPrefix(line, dataPrefix)
		value = strings.TrimPrefix(value, " ")
		data = append(data, value)
	}
	return strings.TrimSpace(strings.Join(data, "\n"))
}

// MessageObserver receives the events of a MessageStream. Any callback may be nil.
type MessageObserver struct {
	OnMessage  func(Message)
	OnError    func(error)
	OnComplete func()
}

type subscription struct {
	id       uint64
	observer MessageObserver
	active   bool
}

// MessageStream delivers the messages of a streamed reply in arrival order.
// Each subscriber sees every message exactly once; a late subscriber first
// receives the messages published before it subscribed.
//
// Unsubscribing stops delivery but does not abort the HTTP request. Cancel
// the context passed to PostMessage to abort it.
type MessageStream struct {
	mu            sync.Mutex
	subscriptions []*subscription
	nextID        uint64
	history       []Message
	finished      bool
	err           error
	done          chan struct{}

	// deliverMu serialises callbacks so replay and live delivery never interleave
	deliverMu sync.Mutex

	ingester frameIngester
	schemas  *schemaRegistry
	logger   zerolog.Logger
}

func newMessageStream(schemas *schemaRegistry, logger zerolog.Logger) *MessageStream {
	return &MessageStream{
		done:    make(chan struct{}),
		schemas: schemas,
		logger:  logger,
	}
}

// NewMessageStream ingests an SSE body opened elsewhere, such as a recorded
// response. The stream closes body when it ends.
func NewMessageStream(body io.ReadCloser, logger zerolog.Logger) *MessageStream {
	stream := newMessageStream(defaultSchemas(), logger)
	go stream.consume(body)
	return stream
}

// Subscribe registers an observer and returns a function that removes it.
// Callbacks run on the stream's reader goroutine and must not call Subscribe.
func (s *MessageStream) Subscribe(observer MessageObserver) (unsubscribe func()) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	sub := &subscription{id: s.nextID, observer: observer, active: true}
	s.nextID++
	history := append([]Message(nil), s.history...)
	finished, err := s.finished, s.err
	if !finished {
		s.subscriptions = append(s.subscriptions, sub)
	}
	s.mu.Unlock()

	for _, msg := range history {
		if observer.OnMessage != nil {
			observer.OnMessage(msg)
		}
	}

	if finished {
		notifyTerminal(observer, err)
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		sub.active = false
		for i, candidate := range s.subscriptions {
			if candidate.id == sub.id {
				s.subscriptions = append(s.subscriptions[:i], s.subscriptions[i+1:]...)
				break
			}
		}
	}
}

// Progress feeds the whole response buffer received so far into the stream
// and publishes every message completed since the previous call.
func (s *MessageStream) Progress(buffer string) {
	for _, record := range s.ingester.Progress(buffer) {
		payload := recordPayload(record)
		if payload == "" {
			continue
		}

		msg, err := s.parseMessage(payload)
		if err != nil {
			s.logger.Warn().Err(err).Str("record", truncate(payload, 200)).Msg("Skipping malformed stream record")
			continue
		}

		s.publish(msg)
	}
}

func (s *MessageStream) parseMessage(payload string) (Message, error) {
	var value interface{}
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		return Message{}, fmt.Errorf("failed to parse record: %w", err)
	}

	if s.schemas != nil {
		if err := s.schemas.ValidateValue(schemaMessage, value); err != nil {
			return Message{}, fmt.Errorf("record does not match message schema: %w", err)
		}
	}

	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return Message{}, fmt.Errorf("failed to decode message: %w", err)
	}

	return msg, nil
}

func (s *MessageStream) publish(msg Message) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.history = append(s.history, msg)
	subs := append([]*subscription(nil), s.subscriptions...)
	s.mu.Unlock()

	for _, sub := range subs {
		if !s.isActive(sub) || sub.observer.OnMessage == nil {
			continue
		}
		sub.observer.OnMessage(msg)
	}
}

func (s *MessageStream) isActive(sub *subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sub.active
}

// finish terminates the stream; a nil err is a clean end of stream
func (s *MessageStream) finish(err error) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.err = err
	subs := s.subscriptions
	s.subscriptions = nil
	s.mu.Unlock()

	for _, sub := range subs {
		if !s.isActive(sub) {
			continue
		}
		notifyTerminal(sub.observer, err)
	}

	close(s.done)
}

func notifyTerminal(observer MessageObserver, err error) {
	if err != nil {
		if observer.OnError != nil {
			observer.OnError(err)
		}
		return
	}
	if observer.OnComplete != nil {
		observer.OnComplete()
	}
}

// Done is closed once the stream has completed or failed
func (s *MessageStream) Done() <-chan struct{} {
	return s.done
}

// Err returns the terminal error, or nil while running or after a clean end
func (s *MessageStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Wait blocks until the stream terminates and returns its terminal error
func (s *MessageStream) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Collect waits for the stream to end and returns every message it published
func (s *MessageStream) Collect(ctx context.Context) ([]Message, error) {
	if err := s.Wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.history...), nil
}

// Messages returns a channel view of the stream. The channel is closed when
// the stream ends or ctx is cancelled; check Err afterwards.
func (s *MessageStream) Messages(ctx context.Context) <-chan Message {
	out := make(chan Message)

	var (
		mu      sync.Mutex
		queue   []Message
		closed  bool
		pending = make(chan struct{}, 1)
	)

	signal := func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	}

	unsubscribe := s.Subscribe(MessageObserver{
		OnMessage: func(msg Message) {
			mu.Lock()
			queue = append(queue, msg)
			mu.Unlock()
			signal()
		},
		OnError:    func(error) { mu.Lock(); closed = true; mu.Unlock(); signal() },
		OnComplete: func() { mu.Lock(); closed = true; mu.Unlock(); signal() },
	})

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			mu.Lock()
			if len(queue) > 0 {
				msg := queue[0]
				queue = queue[1:]
				mu.Unlock()

				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
				continue
			}
			finished := closed
			mu.Unlock()

			if finished {
				return
			}

			select {
			case <-pending:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// consume reads body until EOF, feeding the accumulated buffer into the
// stream after every read, then terminates the stream.
func (s *MessageStream) consume(body io.ReadCloser) {
	defer body.Close()

	var buffer strings.Builder
	chunk := make([]byte, readChunkSize)

	for {
		n, err := body.Read(chunk)
		if n > 0 {
			buffer.Write(chunk[:n])
			s.Progress(buffer.String())
		}

		if errors.Is(err, io.EOF) {
			s.finish(nil)
			return
		}
		if err != nil {
			s.finish(newNetworkError(fmt.Errorf("stream interrupted: %w", err)))
			return
		}
	}
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max] + "..."
}
