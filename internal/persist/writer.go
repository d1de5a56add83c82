package persist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ent0n29/realtybot/internal/memory"
)

const (
	defaultWriteTimeout = 2 * time.Second
	defaultQueueSize    = 256
)

type WriterOptions struct {
	Timeout   time.Duration
	QueueSize int
	Logger    *zap.Logger
	// Failures counts writes that failed or were dropped. Optional; a
	// prometheus.Counter fits.
	Failures Counter
}

type Counter interface {
	Inc()
}

type writeJob struct {
	clientID string
	values   Values
	clear    bool
}

// Writer applies storage writes asynchronously on a single worker so writes
// for a client land in the order they were issued. Callers never block: a
// full queue drops the write.
type Writer struct {
	store    Store
	timeout  time.Duration
	logger   *zap.Logger
	failures Counter

	mu     sync.RWMutex
	closed bool
	jobs   chan writeJob
	done   chan struct{}
}

func NewWriter(store Store, opts WriterOptions) *Writer {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultWriteTimeout
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	w := &Writer{
		store:    store,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		failures: opts.Failures,
		jobs:     make(chan writeJob, opts.QueueSize),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Writer) SaveTurns(clientID string, turns []StoredTurn) {
	if turns == nil {
		turns = []StoredTurn{}
	}
	w.saveKey(clientID, KeyMessages, turns)
}

func (w *Writer) SaveMemory(clientID string, slots memory.Slots) {
	w.saveKey(clientID, KeyMemory, slots)
}

func (w *Writer) SaveVoiceMuted(clientID string, muted bool) {
	w.saveKey(clientID, KeyVoiceMuted, muted)
}

// Clear removes every key stored for the client.
func (w *Writer) Clear(clientID string) {
	w.enqueue(writeJob{clientID: clientID, clear: true})
}

// MemoryPersister binds the writer to one client for memory.Store.
func (w *Writer) MemoryPersister(clientID string) memory.Persister {
	return memory.PersisterFunc(func(s memory.Slots) {
		w.SaveMemory(clientID, s)
	})
}

// Close stops accepting writes and waits for queued ones to finish.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.jobs)
	w.mu.Unlock()
	<-w.done
}

func (w *Writer) saveKey(clientID, key string, v any) {
	raw, err := encode(v)
	if err != nil {
		w.fail("encode", clientID, err)
		return
	}
	w.enqueue(writeJob{clientID: clientID, values: Values{key: raw}})
}

func (w *Writer) enqueue(j writeJob) {
	if j.clientID == "" {
		return
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.jobs <- j:
	default:
		w.fail("queue_full", j.clientID, nil)
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for j := range w.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		var err error
		if j.clear {
			err = w.store.Clear(ctx, j.clientID)
		} else {
			err = w.store.Save(ctx, j.clientID, j.values)
		}
		cancel()
		if err != nil {
			w.fail("write", j.clientID, err)
		}
	}
}

func (w *Writer) fail(reason, clientID string, err error) {
	if w.failures != nil {
		w.failures.Inc()
	}
	w.logger.Warn("session storage write failed",
		zap.String("reason", reason),
		zap.String("client_id", clientID),
		zap.Error(err),
	)
}

// LoadSnapshot reads and decodes a client's stored state. Backend errors are
// returned alongside an empty snapshot so callers can start fresh.
func LoadSnapshot(ctx context.Context, store Store, clientID string) (Snapshot, error) {
	values, err := store.Load(ctx, clientID)
	if err != nil {
		return Snapshot{}, err
	}
	return Decode(values), nil
}
