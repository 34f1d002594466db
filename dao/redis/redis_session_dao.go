package redis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apex/log"

	"mealsnap/config"
	"mealsnap/db"
	"mealsnap/models"
)

// RedisSessionDAO keeps the auth token and user descriptor under the fixed
// storage keys.
type RedisSessionDAO struct {
	client db.RedisClient
}

// NewRedisSessionDAO initializes a RedisSessionDAO with the Redis client.
func NewRedisSessionDAO(client db.RedisClient) *RedisSessionDAO {
	return &RedisSessionDAO{client: client}
}

// SaveSession stores the token when present, and the user descriptor when an
// email or provider is given. Provider defaults to "password".
func (dao *RedisSessionDAO) SaveSession(token, email, provider string) error {
	if token != "" {
		if err := dao.client.Set(config.TOKEN_KEY, token); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}
	}
	if email == "" && provider == "" {
		return nil
	}

	user := models.User{Provider: provider}
	if user.Provider == "" {
		user.Provider = "password"
	}
	if email != "" {
		user.Email = &email
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := dao.client.Set(config.USER_KEY, string(data)); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

// GetToken returns the stored token, or "" when absent.
func (dao *RedisSessionDAO) GetToken() (string, error) {
	token, err := dao.client.Get(config.TOKEN_KEY)
	if errors.Is(err, db.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

// GetUser returns the stored user descriptor. A missing or unparseable
// entry yields nil.
func (dao *RedisSessionDAO) GetUser() (*models.User, error) {
	raw, err := dao.client.Get(config.USER_KEY)
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Warnf("[RedisSessionDAO] Unable to parse stored user: %v", err)
		return nil, nil
	}
	return &user, nil
}

// ClearSession removes every session key.
func (dao *RedisSessionDAO) ClearSession() error {
	for _, key := range []string{config.TOKEN_KEY, config.USER_KEY, config.TEST_USER_KEY} {
		if err := dao.client.Del(key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	log.Info("[RedisSessionDAO] Session cleared")
	return nil
}
