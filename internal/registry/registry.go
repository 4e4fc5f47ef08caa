// Package registry keeps service providers and the queue codes they own in
// the relational database.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"queuely/internal/logger"
	"queuely/internal/models"
)

// ErrEmailTaken is returned when registering an email that already has an account
var ErrEmailTaken = errors.New("email already registered")

// Registry is the gorm-backed owner registry
type Registry struct {
	db  *gorm.DB
	log *logger.Logger
}

// New creates a registry over db
func New(db *gorm.DB, log *logger.Logger) *Registry {
	return &Registry{db: db, log: log.WithComponent("registry")}
}

// Migrate creates or updates the registry tables
func (r *Registry) Migrate() error {
	return r.db.AutoMigrate(&models.ServiceProvider{}, &models.ProviderQueue{})
}

// CreateProvider inserts a new provider. The email must be unused.
func (r *Registry) CreateProvider(ctx context.Context, p *models.ServiceProvider) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ServiceProvider{}).Where("email = ?", p.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	return nil
}

// FindByEmail looks a provider up by login email
func (r *Registry) FindByEmail(ctx context.Context, email string) (*models.ServiceProvider, error) {
	var p models.ServiceProvider
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find provider: %w", err)
	}
	return &p, nil
}

// TouchLogin records a successful login
func (r *Registry) TouchLogin(ctx context.Context, ownerID string, at time.Time) error {
	id, err := parseID(ownerID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.ServiceProvider{}).Where("id = ?", id).Update("last_login_at", at).Error
}

// GetOwner returns the provider with its queue codes
func (r *Registry) GetOwner(ctx context.Context, ownerID string) (*models.ServiceProvider, error) {
	id, err := parseID(ownerID)
	if err != nil {
		return nil, err
	}

	var p models.ServiceProvider
	err = r.db.WithContext(ctx).
		Preload("QueueCodes", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load provider %d: %w", id, err)
	}
	return &p, nil
}

// AddQueueCode links code to the provider. Adding an existing link is a no-op.
func (r *Registry) AddQueueCode(ctx context.Context, ownerID, code string) error {
	p, err := r.GetOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	link := models.ProviderQueue{ServiceProviderID: p.ID, Code: code}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

// RemoveQueueCode unlinks code from the provider
func (r *Registry) RemoveQueueCode(ctx context.Context, ownerID, code string) error {
	id, err := parseID(ownerID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("service_provider_id = ? AND code = ?", id, code).
		Delete(&models.ProviderQueue{}).Error
}

// SetOwnerQueueCodes replaces the provider's code set in one transaction
func (r *Registry) SetOwnerQueueCodes(ctx context.Context, ownerID string, codes []string) error {
	p, err := r.GetOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_provider_id = ?", p.ID).Delete(&models.ProviderQueue{}).Error; err != nil {
			return err
		}
		if len(codes) == 0 {
			return nil
		}
		links := make([]models.ProviderQueue, 0, len(codes))
		for _, code := range codes {
			links = append(links, models.ProviderQueue{ServiceProviderID: p.ID, Code: code})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
}

// OwnerIDs lists every provider id
func (r *Registry) OwnerIDs(ctx context.Context) ([]string, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.ServiceProvider{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatUint(uint64(id), 10)
	}
	return out, nil
}

// DeleteProvider removes the provider and its remaining code links
func (r *Registry) DeleteProvider(ctx context.Context, ownerID string) error {
	id, err := parseID(ownerID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_provider_id = ?", id).Delete(&models.ProviderQueue{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Delete(&models.ServiceProvider{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrProviderNotFound
		}
		r.log.Info("provider deleted", "owner", ownerID)
		return nil
	})
}

// parseID converts an owner id; anything unparsable cannot name a provider
func parseID(ownerID string) (uint, error) {
	id, err := strconv.ParseUint(ownerID, 10, 64)
	if err != nil || id == 0 {
		return 0, models.ErrProviderNotFound
	}
	return uint(id), nil
}
