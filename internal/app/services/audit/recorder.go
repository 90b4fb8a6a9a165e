package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	domainaudit "stayadmin/internal/domain/audit"
)

// Producer publishes audit events to the broker. Matches the broker adapter.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Recorder writes audit entries and fans them out to Kafka. Auditing never
// fails the mutation it describes: every error here is logged and swallowed.
type Recorder struct {
	Producer Producer
	Topic    string
	Logger   *slog.Logger
}

type Change struct {
	Entity   string
	EntityID uint
	Action   domainaudit.Action
	Old      any
	New      any
	UserID   uint
}

// Record persists the entry through repo, typically the transactional audit
// repository so the entry commits together with the mutation. The returned
// entry is handed to Publish once the transaction commits; a rolled-back
// transaction must simply drop it so no phantom event reaches the broker.
func (r *Recorder) Record(ctx context.Context, repo domainaudit.Repository, c Change) *domainaudit.Entry {
	entry := &domainaudit.Entry{
		Entity:    c.Entity,
		EntityID:  c.EntityID,
		Action:    c.Action,
		OldValue:  marshalSnapshot(c.Old),
		NewValue:  marshalSnapshot(c.New),
		UserID:    c.UserID,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Insert(ctx, entry); err != nil {
		r.log("audit write failed", c, err)
		return nil
	}
	return entry
}

// Publish fans a committed entry out to Kafka. Nil entries are ignored.
func (r *Recorder) Publish(ctx context.Context, entry *domainaudit.Entry) {
	if entry == nil || r.Producer == nil || r.Topic == "" {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            "audit." + string(entry.Action) + ".v1",
		"source":          "app://stayadmin",
		"time":            entry.CreatedAt,
		"datacontenttype": "application/json",
		"data":            entry,
	})
	if err != nil {
		r.log("audit event encode failed", Change{Entity: entry.Entity, EntityID: entry.EntityID}, err)
		return
	}
	key := entry.Entity + ":" + strconv.FormatUint(uint64(entry.EntityID), 10)
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	if err := r.Producer.Publish(ctx, r.Topic, key, payload, headers); err != nil {
		r.log("audit event publish failed", Change{Entity: entry.Entity, EntityID: entry.EntityID}, err)
	}
}

func (r *Recorder) log(msg string, c Change, err error) {
	if r.Logger == nil {
		return
	}
	r.Logger.Error(msg, "entity", c.Entity, "entity_id", c.EntityID, "error", err)
}

func marshalSnapshot(v any) []byte {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
