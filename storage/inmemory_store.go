package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const UpdateBufferSize = 255

type InmemoryStore struct {
	valuesMu sync.RWMutex
	values   []byte

	mu          sync.Mutex
	updateChans []chan *Update

	// stop will be closed when Close() is called
	stop chan struct{}
}

func NewInmemoryStore() *InmemoryStore {
	return &InmemoryStore{
		values:      []byte(""),
		stop:        make(chan struct{}),
		updateChans: make([]chan *Update, 0),
	}
}

func (i *InmemoryStore) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.isRunning() {
		return nil
	}

	close(i.stop)

	for _, updateChan := range i.updateChans {
		close(updateChan)
	}

	i.updateChans = nil

	return nil
}

func (i *InmemoryStore) Set(ctx context.Context, key string, value interface{}) error {
	i.valuesMu.Lock()

	values, err := sjson.SetBytes(i.values, key, value)
	if err != nil {
		i.valuesMu.Unlock()
		return fmt.Errorf("set %s: %w", key, err)
	}

	i.values = values
	raw := []byte(gjson.GetBytes(i.values, key).Raw)

	i.valuesMu.Unlock()

	i.notify(ctx, &Update{Key: key, Value: raw})

	return nil
}

func (i *InmemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	i.valuesMu.RLock()
	defer i.valuesMu.RUnlock()

	result := gjson.GetBytes(i.values, key)
	if !result.Exists() {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}

	return []byte(result.Raw), nil
}

func (i *InmemoryStore) Delete(ctx context.Context, key string) error {
	i.valuesMu.Lock()
	defer i.valuesMu.Unlock()

	values, err := sjson.DeleteBytes(i.values, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	i.values = values
	return nil
}

func (i *InmemoryStore) ListenToUpdates() <-chan *Update {
	i.mu.Lock()
	defer i.mu.Unlock()

	updateChan := make(chan *Update, UpdateBufferSize)

	if i.isRunning() {
		i.updateChans = append(i.updateChans, updateChan)
	} else {
		close(updateChan)
	}

	return updateChan
}

func (i *InmemoryStore) Restore(values []byte) error {
	if len(values) > 0 && !gjson.ValidBytes(values) {
		return fmt.Errorf("restore: invalid JSON document")
	}

	i.valuesMu.Lock()
	defer i.valuesMu.Unlock()

	i.values = append([]byte(nil), values...)
	return nil
}

func (i *InmemoryStore) Backup() ([]byte, error) {
	i.valuesMu.RLock()
	defer i.valuesMu.RUnlock()

	if len(i.values) == 0 {
		return []byte("{}"), nil
	}

	return append([]byte(nil), i.values...), nil
}

// notify sends update to every listener. It blocks while a listener's buffer
// is full, until ctx is done.
func (i *InmemoryStore) notify(ctx context.Context, update *Update) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.isRunning() {
		return
	}

	for _, updateChan := range i.updateChans {
		select {
		case updateChan <- update:
		case <-ctx.Done():
			return
		}
	}
}

// isRunning returns true if Close has not been called
func (i *InmemoryStore) isRunning() bool {
	select {
	case <-i.stop:
		return false

	default:
		return true
	}
}

var _ Store = (*InmemoryStore)(nil)
