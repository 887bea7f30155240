package resources

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrResourceNotFound = errors.New("resource not found")

type Store interface {
	List(ctx context.Context, f Filter) ([]Resource, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*Resource, error)
	Create(ctx context.Context, r *Resource) error
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementDownloads bumps the counter and returns the new value.
	IncrementDownloads(ctx context.Context, id uuid.UUID) (int64, error)
	// ForgetUploader detaches a deleted account from its uploads.
	ForgetUploader(ctx context.Context, userID uuid.UUID) error
}

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *gormStore) List(ctx context.Context, f Filter) ([]Resource, int64, error) {
	q := s.db.WithContext(ctx).Model(&Resource{})
	if f.Subject != "" {
		q = q.Where("subject = ?", f.Subject)
	}
	if f.Unit != "" {
		q = q.Where("unit = ?", f.Unit)
	}
	if f.Query != "" {
		pattern := "%" + likeEscaper.Replace(f.Query) + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Resource
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&items).Error
	return items, total, err
}

func (s *gormStore) Get(ctx context.Context, id uuid.UUID) (*Resource, error) {
	var r Resource
	err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *gormStore) Create(ctx context.Context, r *Resource) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *gormStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&Resource{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrResourceNotFound
	}
	return nil
}

func (s *gormStore) IncrementDownloads(ctx context.Context, id uuid.UUID) (int64, error) {
	var r Resource
	res := s.db.WithContext(ctx).Model(&r).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "downloads"}}}).
		Where("id = ?", id).
		Update("downloads", gorm.Expr("downloads + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrResourceNotFound
	}
	return r.Downloads, nil
}

func (s *gormStore) ForgetUploader(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&Resource{}).
		Where("uploaded_by = ?", userID).
		Update("uploaded_by", nil).Error
}
