package postgres

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"stayadmin/internal/domain/audit"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, e *audit.Entry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return wrapStoreErr("audit: insert", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, f audit.Filter) ([]audit.Entry, int64, error) {
	q := r.db.WithContext(ctx).Model(&audit.Entry{}).
		Joins("LEFT JOIN users ON users.id = audit_logs.user_id")
	if f.Entity != "" {
		q = q.Where("audit_logs.entity = ?", f.Entity)
	}
	if f.EntityID != 0 {
		q = q.Where("audit_logs.entity_id = ?", f.EntityID)
	}
	if f.Action != "" {
		q = q.Where("audit_logs.action = ?", f.Action)
	}
	if f.UserID != 0 {
		q = q.Where("audit_logs.user_id = ?", f.UserID)
	}
	if f.From != nil {
		q = q.Where("audit_logs.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("audit_logs.created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreErr("audit: count", err)
	}

	page, limit := normalizePage(f.Page, f.Limit)
	var entries []audit.Entry
	err := q.Select("audit_logs.*, users.name AS user_name").
		Order("audit_logs.created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, wrapStoreErr("audit: list", err)
	}
	return entries, total, nil
}

func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]audit.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var entries []audit.Entry
	err := r.db.WithContext(ctx).Model(&audit.Entry{}).
		Joins("LEFT JOIN users ON users.id = audit_logs.user_id").
		Select("audit_logs.*, users.name AS user_name").
		Order("audit_logs.created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, wrapStoreErr("audit: recent", err)
	}
	return entries, nil
}

// Statistics slices the trail by action, entity, user and day. The daily
// buckets are computed in Go so the query stays portable.
func (r *AuditRepository) Statistics(ctx context.Context, from, to *time.Time) (*audit.Statistics, error) {
	stats := &audit.Statistics{}

	entries := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&audit.Entry{})
		if from != nil {
			q = q.Where("audit_logs.created_at >= ?", *from)
		}
		if to != nil {
			q = q.Where("audit_logs.created_at <= ?", *to)
		}
		return q
	}

	if err := entries().
		Select("action, COUNT(*) AS count").
		Group("action").Order("count DESC").
		Scan(&stats.Actions).Error; err != nil {
		return nil, wrapStoreErr("audit: action stats", err)
	}
	if err := entries().
		Select("entity, COUNT(*) AS count").
		Group("entity").Order("count DESC").
		Scan(&stats.Entities).Error; err != nil {
		return nil, wrapStoreErr("audit: entity stats", err)
	}

	var total int64
	for _, a := range stats.Actions {
		total += a.Count
	}
	if total > 0 {
		for i := range stats.Actions {
			stats.Actions[i].Percentage = float64(stats.Actions[i].Count) / float64(total) * 100
		}
		for i := range stats.Entities {
			stats.Entities[i].Percentage = float64(stats.Entities[i].Count) / float64(total) * 100
		}
	}

	if err := entries().
		Joins("LEFT JOIN users ON users.id = audit_logs.user_id").
		Select("users.name AS user_name, users.email AS user_email, COUNT(audit_logs.id) AS total_actions, COUNT(DISTINCT audit_logs.entity) AS entities_modified").
		Group("audit_logs.user_id, users.name, users.email").
		Order("total_actions DESC").
		Limit(10).
		Scan(&stats.Users).Error; err != nil {
		return nil, wrapStoreErr("audit: user activity", err)
	}

	var rows []audit.Entry
	if err := entries().
		Select("created_at", "user_id", "entity").
		Find(&rows).Error; err != nil {
		return nil, wrapStoreErr("audit: daily activity", err)
	}
	type dayAgg struct {
		actions  int64
		users    map[uint]struct{}
		entities map[string]struct{}
	}
	byDay := make(map[string]*dayAgg)
	for _, e := range rows {
		key := e.CreatedAt.Format("2006-01-02")
		d, ok := byDay[key]
		if !ok {
			d = &dayAgg{users: map[uint]struct{}{}, entities: map[string]struct{}{}}
			byDay[key] = d
		}
		d.actions++
		d.users[e.UserID] = struct{}{}
		d.entities[e.Entity] = struct{}{}
	}
	for key, d := range byDay {
		stats.Daily = append(stats.Daily, audit.DailyActivity{
			Date:             key,
			TotalActions:     d.actions,
			ActiveUsers:      int64(len(d.users)),
			EntitiesModified: int64(len(d.entities)),
		})
	}
	sort.Slice(stats.Daily, func(i, j int) bool { return stats.Daily[i].Date > stats.Daily[j].Date })
	if len(stats.Daily) > 30 {
		stats.Daily = stats.Daily[:30]
	}
	return stats, nil
}

func (r *AuditRepository) Summarize(ctx context.Context, entity string, entityID uint) ([]audit.Summary, error) {
	var summary []audit.Summary
	err := r.db.WithContext(ctx).Model(&audit.Entry{}).
		Select("action, COUNT(*) AS count, MIN(created_at) AS first_action, MAX(created_at) AS last_action").
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Group("action").
		Order("last_action DESC").
		Find(&summary).Error
	if err != nil {
		return nil, wrapStoreErr("audit: summary", err)
	}
	return summary, nil
}

var _ audit.Repository = (*AuditRepository)(nil)
