package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrPreferenceNotFound 偏好不存在
var ErrPreferenceNotFound = errors.New("preference not found")

// GetPreference 读取单个偏好，值是 JSON 字面量字符串
func (s *Store) GetPreference(ctx context.Context, userID int, key string) (string, error) {
	query := s.rebind(`SELECT value FROM user_preferences WHERE user_id = $1 AND key = $2`)
	var value string
	err := s.db.QueryRowContext(ctx, query, userID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrPreferenceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get preference: %w", err)
	}
	return value, nil
}

// SetPreference 写入偏好（存在则覆盖）
func (s *Store) SetPreference(ctx context.Context, userID int, key, value string) error {
	query := fmt.Sprintf(
		`INSERT INTO user_preferences (user_id, key, value, updated_at) VALUES ($1, $2, $3, %s) %s`,
		s.dialect.CurrentTimestamp(),
		s.dialect.UpsertConflict("user_id, key", []string{
			"value = EXCLUDED.value",
			"updated_at = " + s.dialect.CurrentTimestamp(),
		}),
	)
	if _, err := s.db.ExecContext(ctx, s.rebind(query), userID, key, value); err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

// ListPreferences 返回用户的全部偏好
func (s *Store) ListPreferences(ctx context.Context, userID int) (map[string]string, error) {
	query := s.rebind(`SELECT key, value FROM user_preferences WHERE user_id = $1`)
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs[key] = value
	}
	return prefs, rows.Err()
}

// DeletePreference 删除偏好（不存在也视为成功）
func (s *Store) DeletePreference(ctx context.Context, userID int, key string) error {
	query := s.rebind(`DELETE FROM user_preferences WHERE user_id = $1 AND key = $2`)
	if _, err := s.db.ExecContext(ctx, query, userID, key); err != nil {
		return fmt.Errorf("delete preference: %w", err)
	}
	return nil
}
