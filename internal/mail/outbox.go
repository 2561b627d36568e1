package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/novendor/novendor-site/server/internal/model"
)

// outboxStamp is fixed width so lexical order of file names is queue order.
const outboxStamp = "20060102T150405.000000000Z"

// OutboxRecord is the JSON document written for every queued message.
type OutboxRecord struct {
	Message
	QueuedAt time.Time `json:"queuedAt"`
}

// OutboxTransport queues messages as JSON files when no relay is configured.
type OutboxTransport struct {
	dir string
	now func() time.Time
}

func NewOutboxTransport(dir string) *OutboxTransport {
	return &OutboxTransport{dir: dir, now: time.Now}
}

// Dir returns the directory messages are written to.
func (o *OutboxTransport) Dir() string { return o.dir }

// Send writes msg to <dir>/<UTC timestamp>-<random>.json. The file appears
// under its final name only once it is complete.
func (o *OutboxTransport) Send(ctx context.Context, msg Message) (model.DeliveryMode, error) {
	if err := ctx.Err(); err != nil {
		return model.DeliveryFailed, err
	}
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return model.DeliveryFailed, fmt.Errorf("%w: create outbox dir: %v", model.ErrDelivery, err)
	}
	now := o.now().UTC()
	body, err := json.MarshalIndent(OutboxRecord{Message: msg, QueuedAt: now}, "", "  ")
	if err != nil {
		return model.DeliveryFailed, fmt.Errorf("%w: encode outbox message: %v", model.ErrDelivery, err)
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := fmt.Sprintf("%s-%s.json", now.Format(outboxStamp), suffix)
	if err := writeFileAtomic(filepath.Join(o.dir, name), body); err != nil {
		return model.DeliveryFailed, fmt.Errorf("%w: write outbox message: %v", model.ErrDelivery, err)
	}
	return model.DeliveryOutbox, nil
}

// HealthPing implements health.HealthPinger: the outbox dir must be writable.
func (o *OutboxTransport) HealthPing(ctx context.Context) error {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(o.dir, ".probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// ListOutbox returns the queued message files in dir, oldest first.
// A missing directory has no messages.
func ListOutbox(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// ReadOutboxFile decodes one queued message.
func ReadOutboxFile(path string) (*OutboxRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec OutboxRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &rec, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
