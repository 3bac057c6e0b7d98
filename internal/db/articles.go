package db

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *GormStore) UpsertArticle(a *Article) error {
	// notified_at is deliberately absent from the update set: a
	// re-delivered publish event must not reopen the idempotency marker.
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"title":        a.Title,
			"excerpt":      a.Excerpt,
			"url":          a.URL,
			"image_url":    a.ImageURL,
			"published_at": a.PublishedAt,
			"updated_at":   time.Now(),
		}),
	}).Create(a).Error
}

func (s *GormStore) GetArticle(externalID string) (*Article, error) {
	var a Article
	if err := s.db.Where("external_id = ?", externalID).First(&a).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *GormStore) ClaimNotification(externalID string, at time.Time) (bool, error) {
	res := s.db.Model(&Article{}).
		Where("external_id = ? AND notified_at IS NULL", externalID).
		Update("notified_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
