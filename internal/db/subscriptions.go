package db

import (
	"time"

	"gorm.io/gorm/clause"
)

func (s *GormStore) UpsertSubscription(sub *Subscription) error {
	now := time.Now()
	sub.LastUsed = now
	sub.IsActive = true
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}

	// Single statement, so racing re-subscribes for the same endpoint
	// contend on the unique constraint instead of read-then-write.
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"p256dh":     sub.P256dh,
			"auth":       sub.Auth,
			"user_agent": sub.UserAgent,
			"ip_address": sub.IPAddress,
			"last_used":  now,
			"is_active":  true,
		}),
	}).Create(sub).Error
}

func (s *GormStore) DeactivateSubscription(endpoint string) error {
	return s.db.Model(&Subscription{}).
		Where("endpoint = ?", endpoint).
		Update("is_active", false).Error
}

func (s *GormStore) RemoveSubscription(endpoint string) error {
	res := s.db.Where("endpoint = ?", endpoint).Delete(&Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListActiveSubscriptions() ([]Subscription, error) {
	var subs []Subscription
	if err := s.db.Where("is_active = ?", true).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *GormStore) CountActiveSubscriptions() (int64, error) {
	var count int64
	err := s.db.Model(&Subscription{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

func (s *GormStore) PruneInactiveSubscriptions(cutoff time.Time) (int64, error) {
	res := s.db.Where("is_active = ? AND last_used < ?", false, cutoff).Delete(&Subscription{})
	return res.RowsAffected, res.Error
}
