package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/justsurfingit/vacancy-parser/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("vacancy not found")

// refreshColumns are overwritten when a vacancy is resubmitted. status and
// created_at are left to the existing row.
var refreshColumns = []string{
	"updated_at", "text", "html", "channel", "keyword", "has_image", "posted_at",
	"category", "reason", "apply_url", "company_url", "company_name", "skills",
	"employment_type", "work_format", "salary", "industry",
}

type VacancyStore struct {
	db *gorm.DB
}

func NewVacancyStore(db *gorm.DB) *VacancyStore {
	return &VacancyStore{db: db}
}

// FindByMessageLink returns ErrNotFound when no vacancy has link.
func (s *VacancyStore) FindByMessageLink(ctx context.Context, link string) (*models.Vacancy, error) {
	var v models.Vacancy
	err := s.db.WithContext(ctx).Where("message_link = ?", link).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find vacancy by link: %w", err)
	}
	return &v, nil
}

func (s *VacancyStore) Insert(ctx context.Context, v *models.Vacancy) (*models.Vacancy, error) {
	if v.Status == "" {
		v.Status = models.StatusNew
	}
	if err := s.db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, fmt.Errorf("insert vacancy: %w", err)
	}
	return v, nil
}

// Update overwrites the refreshable fields of vacancy id with those of v.
func (s *VacancyStore) Update(ctx context.Context, id uint, v *models.Vacancy) (*models.Vacancy, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Vacancy{ID: id}).
		Select(refreshColumns).
		Updates(v)
	if res.Error != nil {
		return nil, fmt.Errorf("update vacancy %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var out models.Vacancy
	if err := s.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, fmt.Errorf("reload vacancy %d: %w", id, err)
	}
	return &out, nil
}

// Upsert inserts v, or refreshes the vacancy that already holds its message
// link, in a single statement. Vacancies without a link are always inserted.
func (s *VacancyStore) Upsert(ctx context.Context, v *models.Vacancy) (*models.Vacancy, error) {
	link := v.LinkKey()
	if link == "" {
		v.MessageLink = nil
		return s.Insert(ctx, v)
	}
	if v.Status == "" {
		v.Status = models.StatusNew
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_link"}},
			DoUpdates: clause.AssignmentColumns(refreshColumns),
		}).
		Create(v).Error
	if err != nil {
		return nil, fmt.Errorf("upsert vacancy: %w", err)
	}
	return s.FindByMessageLink(ctx, link)
}
