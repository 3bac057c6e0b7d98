package db

func (s *GormStore) AppendNotificationLog(l *NotificationLog) error {
	return s.db.Create(l).Error
}

func (s *GormStore) RecentNotificationLogs(limit int) ([]NotificationLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []NotificationLog
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
