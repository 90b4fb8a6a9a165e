package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry records one mutation: who changed which entity, and the before and
// after snapshots as raw JSON.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Entity    string    `gorm:"not null;index" json:"entity"`
	EntityID  uint      `gorm:"not null;index" json:"entity_id"`
	Action    Action    `gorm:"type:varchar(10);not null" json:"action"`
	OldValue  []byte    `gorm:"type:jsonb" json:"old_value,omitempty"`
	NewValue  []byte    `gorm:"type:jsonb" json:"new_value,omitempty"`
	UserID    uint      `gorm:"index" json:"user_id"`
	UserName  string    `gorm:"->;-:migration" json:"user_name,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Entry) TableName() string { return "audit_logs" }

type Filter struct {
	Entity   string
	EntityID uint
	Action   string
	UserID   uint
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

// Summary aggregates the audit trail of a single entity by action.
type Summary struct {
	Action      Action    `json:"action"`
	Count       int64     `json:"count"`
	FirstAction time.Time `json:"first_action"`
	LastAction  time.Time `json:"last_action"`
}

// ActionShare and EntityShare slice the whole trail by action and entity.
type ActionShare struct {
	Action     Action  `json:"action"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type EntityShare struct {
	Entity     string  `json:"entity"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type UserActivity struct {
	UserName         string `json:"user_name"`
	UserEmail        string `json:"user_email"`
	TotalActions     int64  `json:"total_actions"`
	EntitiesModified int64  `json:"entities_modified"`
}

type DailyActivity struct {
	Date             string `json:"date"`
	TotalActions     int64  `json:"total_actions"`
	ActiveUsers      int64  `json:"active_users"`
	EntitiesModified int64  `json:"entities_modified"`
}

type Statistics struct {
	Actions  []ActionShare   `json:"actions"`
	Entities []EntityShare   `json:"entities"`
	Users    []UserActivity  `json:"users"`
	Daily    []DailyActivity `json:"daily"`
}

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter) ([]Entry, int64, error)
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Summarize(ctx context.Context, entity string, entityID uint) ([]Summary, error)
	Statistics(ctx context.Context, from, to *time.Time) (*Statistics, error)
}
