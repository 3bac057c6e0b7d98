package db

import (
	"gorm.io/gorm"
)

func (s *GormStore) GetActiveAPIKey(key string) (*APIKey, error) {
	var k APIKey
	if err := s.db.Where("key = ? AND active = ?", key, true).Preload("User").First(&k).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &k, nil
}

func (s *GormStore) GetAPIKeyByID(id uint) (*APIKey, error) {
	var k APIKey
	if err := s.db.First(&k, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &k, nil
}

func (s *GormStore) CreateAPIKey(k *APIKey) error {
	return s.db.Create(k).Error
}

func (s *GormStore) DeleteAPIKey(id uint) error {
	return s.db.Delete(&APIKey{}, id).Error
}

func (s *GormStore) ListAPIKeys() ([]APIKey, error) {
	var keys []APIKey
	if err := s.db.Order("id").Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *GormStore) SetAPIKeyActive(id uint, active bool) error {
	return s.db.Model(&APIKey{}).Where("id = ?", id).Update("active", active).Error
}
