package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/evacreport/backend/internal/models"
	"github.com/evacreport/backend/internal/services"
)

const pgUniqueViolation = "23505"

// GormStore implements the center, draft, and user stores on top of gorm
// for postgres and sqlite.
type GormStore struct {
	db          *gorm.DB
	idGenerator func() string
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, idGenerator: uuid.NewString}
}

// mapError translates driver errors into the service sentinels.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, services.ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", what, services.ErrConflict)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w", what, services.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *GormStore) ListIncidents(ctx context.Context) ([]models.Incident, error) {
	var incidents []models.Incident
	if err := s.db.WithContext(ctx).Order("date desc").Find(&incidents).Error; err != nil {
		return nil, mapError(err, "list incidents")
	}
	return incidents, nil
}

func (s *GormStore) GetIncident(ctx context.Context, id string) (models.Incident, error) {
	var inc models.Incident
	if err := s.db.WithContext(ctx).First(&inc, "id = ?", id).Error; err != nil {
		return models.Incident{}, mapError(err, "incident "+id)
	}
	return inc, nil
}

func (s *GormStore) UpsertIncident(ctx context.Context, inc models.Incident) error {
	if inc.ID == "" {
		inc.ID = s.idGenerator()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&inc).Error
	return mapError(err, "incident "+inc.ID)
}

func (s *GormStore) UpdateIncidentCounters(ctx context.Context, id string, centers, evacuees int) error {
	res := s.db.WithContext(ctx).Model(&models.Incident{}).Where("id = ?", id).Updates(map[string]interface{}{
		"evacuation_centers": centers,
		"total_evacuees":     evacuees,
	})
	if res.Error != nil {
		return mapError(res.Error, "incident "+id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("incident %s: %w", id, services.ErrNotFound)
	}
	return nil
}

func (s *GormStore) ListCenters(ctx context.Context) ([]models.EvacuationCenter, error) {
	var centers []models.EvacuationCenter
	if err := s.db.WithContext(ctx).Order("name").Find(&centers).Error; err != nil {
		return nil, mapError(err, "list centers")
	}
	return centers, nil
}

func (s *GormStore) GetCenter(ctx context.Context, id string) (models.EvacuationCenter, error) {
	var c models.EvacuationCenter
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return models.EvacuationCenter{}, mapError(err, "center "+id)
	}
	return c, nil
}

func (s *GormStore) CreateCenter(ctx context.Context, c models.EvacuationCenter) (models.EvacuationCenter, error) {
	if c.ID == "" {
		c.ID = s.idGenerator()
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return models.EvacuationCenter{}, mapError(err, "center "+c.ID)
	}
	return c, nil
}

// UpdateCenter replaces a stored center. Unknown ids are not created.
func (s *GormStore) UpdateCenter(ctx context.Context, c models.EvacuationCenter) (models.EvacuationCenter, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.EvacuationCenter
		if err := tx.Select("id", "created_at").First(&existing, "id = ?", c.ID).Error; err != nil {
			return err
		}
		c.CreatedAt = existing.CreatedAt
		return tx.Save(&c).Error
	})
	if err != nil {
		return models.EvacuationCenter{}, mapError(err, "center "+c.ID)
	}
	return c, nil
}

func (s *GormStore) SaveDraft(ctx context.Context, d models.StoredDraft) error {
	return mapError(s.db.WithContext(ctx).Save(&d).Error, "draft "+d.SessionID)
}

func (s *GormStore) LoadDraft(ctx context.Context, sessionID string) (models.StoredDraft, error) {
	var d models.StoredDraft
	if err := s.db.WithContext(ctx).First(&d, "session_id = ?", sessionID).Error; err != nil {
		return models.StoredDraft{}, mapError(err, "draft "+sessionID)
	}
	return d, nil
}

func (s *GormStore) DeleteDraft(ctx context.Context, sessionID string) error {
	res := s.db.WithContext(ctx).Delete(&models.StoredDraft{}, "session_id = ?", sessionID)
	if res.Error != nil {
		return mapError(res.Error, "draft "+sessionID)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("draft %s: %w", sessionID, services.ErrNotFound)
	}
	return nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", strings.ToLower(email)).Error; err != nil {
		return models.User{}, mapError(err, "user "+email)
	}
	return u, nil
}

// CreateUser stores a user whose password is already hashed.
func (s *GormStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = s.idGenerator()
	}
	u.Email = strings.ToLower(u.Email)
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return models.User{}, mapError(err, "user "+u.Email)
	}
	return u, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("email").Find(&users).Error; err != nil {
		return nil, mapError(err, "list users")
	}
	return users, nil
}

func (s *GormStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
