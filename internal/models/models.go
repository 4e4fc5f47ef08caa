package models

import (
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// ErrProviderNotFound is returned by the registry for unknown provider ids.
var ErrProviderNotFound = errors.New("service provider not found")

// ServiceProvider is an organisation that owns and operates queues.
type ServiceProvider struct {
	gorm.Model
	Name         string          `gorm:"not null"`
	Email        string          `gorm:"uniqueIndex;not null"`
	PasswordHash string          `gorm:"not null"`
	Location     string          // Опциональное местоположение
	LastLoginAt  *time.Time      // nil until the first login
	QueueCodes   []ProviderQueue `gorm:"foreignKey:ServiceProviderID;constraint:OnDelete:CASCADE"`
}

// ProviderQueue links a provider to one queue code in the queue store.
type ProviderQueue struct {
	ID                uint      `gorm:"primaryKey"`
	ServiceProviderID uint      `gorm:"index;not null"`
	Code              string    `gorm:"uniqueIndex;size:6;not null"` // Код очереди в хранилище
	CreatedAt         time.Time
}

// OwnerID is the identifier the queue store records for this provider.
func (p *ServiceProvider) OwnerID() string {
	return strconv.FormatUint(uint64(p.ID), 10)
}

// Codes returns the provider's queue codes in registration order.
func (p *ServiceProvider) Codes() []string {
	codes := make([]string, 0, len(p.QueueCodes))
	for _, q := range p.QueueCodes {
		codes = append(codes, q.Code)
	}
	return codes
}
