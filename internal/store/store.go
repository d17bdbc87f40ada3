package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"camp-registration-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// FindQuota returns the quota of origin or ErrQuotaNotFound. Inside
	// Atomically the quota row stays locked until the transaction ends.
	FindQuota(ctx context.Context, origin string) (*model.OriginQuota, error)
	CountReserved(ctx context.Context, origin string) (int64, error)
	// InsertGroup writes all rows of one group in a single statement.
	InsertGroup(ctx context.Context, rows []model.Reservation) error
	// Atomically runs fn in one transaction. fn must use the Store it is
	// given; returning an error rolls everything back.
	Atomically(ctx context.Context, fn func(tx Store) error) error

	ListQuotas(ctx context.Context) ([]model.OriginQuota, error)
	ReservedByOrigin(ctx context.Context) (map[string]int64, error)
	UpsertQuotas(ctx context.Context, quotas []model.OriginQuota) error
	SetQuotaEnabled(ctx context.Context, origin string, enabled bool) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db   *gorm.DB
	inTx bool
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Atomically(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, inTx: true})
	})
}

func (s *gormStore) FindQuota(ctx context.Context, origin string) (*model.OriginQuota, error) {
	q := s.db.WithContext(ctx)
	if s.inTx {
		// Serializes admissions per origin. SQLite drops the clause and
		// serializes writers on its own.
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var quotas []model.OriginQuota
	if err := q.Where("origin = ?", origin).Find(&quotas).Error; err != nil {
		return nil, fmt.Errorf("find quota for %q: %w", origin, err)
	}
	if len(quotas) == 0 {
		return nil, ErrQuotaNotFound
	}
	return &quotas[0], nil
}

func (s *gormStore) CountReserved(ctx context.Context, origin string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("origin = ? AND status = ?", origin, model.StatusReserved).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count reserved for %q: %w", origin, err)
	}
	return n, nil
}

func (s *gormStore) InsertGroup(ctx context.Context, rows []model.Reservation) error {
	if len(rows) == 0 {
		return errors.New("insert group: no rows")
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert group %s: %w", rows[0].GroupID, err)
	}
	return nil
}

func (s *gormStore) ListQuotas(ctx context.Context) ([]model.OriginQuota, error) {
	var quotas []model.OriginQuota
	if err := s.db.WithContext(ctx).Order("origin").Find(&quotas).Error; err != nil {
		return nil, fmt.Errorf("list quotas: %w", err)
	}
	return quotas, nil
}

func (s *gormStore) ReservedByOrigin(ctx context.Context) (map[string]int64, error) {
	var counts []originCount
	err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Select("origin, count(*) AS reserved").
		Where("status = ?", model.StatusReserved).
		Group("origin").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count reserved by origin: %w", err)
	}

	byOrigin := make(map[string]int64, len(counts))
	for _, c := range counts {
		byOrigin[c.Origin] = c.Reserved
	}
	return byOrigin, nil
}

func (s *gormStore) UpsertQuotas(ctx context.Context, quotas []model.OriginQuota) error {
	if len(quotas) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "origin"}},
		DoUpdates: clause.AssignmentColumns([]string{"max_slots", "enabled", "updated_at"}),
	}).Create(&quotas).Error
	if err != nil {
		return fmt.Errorf("batch upsert quotas failed: %w", err)
	}
	return nil
}

func (s *gormStore) SetQuotaEnabled(ctx context.Context, origin string, enabled bool) error {
	res := s.db.WithContext(ctx).
		Model(&model.OriginQuota{}).
		Where("origin = ?", origin).
		Update("enabled", enabled)
	if res.Error != nil {
		return fmt.Errorf("set enabled=%t for %q: %w", enabled, origin, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrQuotaNotFound
	}
	return nil
}
