package db

import (
	"gorm.io/gorm"
)

func (s *GormStore) GetUserByUsername(username string) (*User, error) {
	var u User
	if err := s.db.Where("username = ?", username).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) GetUserByID(id uint) (*User, error) {
	var u User
	if err := s.db.First(&u, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) CreateUser(u *User) error {
	return s.db.Create(u).Error
}

func (s *GormStore) DeleteUser(id uint) error {
	return s.db.Delete(&User{}, id).Error
}

func (s *GormStore) ListUsers() ([]User, error) {
	var users []User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *GormStore) UpdateUserPassword(id uint, passwordHash string) error {
	return s.db.Model(&User{}).Where("id = ?", id).Update("password_hash", passwordHash).Error
}
