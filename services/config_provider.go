package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"schoolleave_go/config"
	"schoolleave_go/database"
	"schoolleave_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Setting keys consumed by the leave engine
const (
	SettingMinLeaveDays     = "leave_min_days"
	SettingApprovalRequired = "leave_approval_required"
	SettingAutoRecalc       = "refund_auto_recalc"
)

// DefaultSettings seeds the system_settings table on first boot.
var DefaultSettings = []models.SystemSetting{
	{Key: SettingMinLeaveDays, Value: "0", Description: "Leave requests must claim strictly more days than this"},
	{Key: SettingApprovalRequired, Value: "true", Description: "Whether new leave requests wait for review"},
	{Key: SettingAutoRecalc, Value: "false", Description: "Run the scheduled refund recalculation job"},
}

const settingsCachePrefix = "settings:"

// ConfigProvider reads named string-valued configuration from the
// system_settings table, with an optional bounded-TTL redis cache in front.
// Rule thresholds are read at call time so a settings change takes effect on
// the next request.
type ConfigProvider struct {
	db    *gorm.DB
	redis *redis.Client
	ttl   time.Duration
}

// NewConfigProvider creates a provider over the shared connections.
func NewConfigProvider() *ConfigProvider {
	ttl := time.Minute
	if config.AppConfig != nil {
		ttl = config.AppConfig.SettingsCacheTTL
	}
	return &ConfigProvider{
		db:    database.DB,
		redis: database.GetRedisClient(),
		ttl:   ttl,
	}
}

// GetString returns the raw setting value, and whether the key exists.
func (p *ConfigProvider) GetString(key string) (string, bool) {
	if p.redis != nil {
		ctx := context.Background()
		if cached, err := p.redis.Get(ctx, settingsCachePrefix+key).Result(); err == nil {
			return cached, true
		}
	}

	var setting models.SystemSetting
	if err := p.db.Where("`key` = ?", key).First(&setting).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).WithField("key", key).Warn("settings lookup failed")
		}
		return "", false
	}

	if p.redis != nil {
		ctx := context.Background()
		if err := p.redis.Set(ctx, settingsCachePrefix+key, setting.Value, p.ttl).Err(); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("settings cache write failed")
		}
	}
	return setting.Value, true
}

// GetInt returns the setting parsed as an integer, or def when absent or malformed.
func (p *ConfigProvider) GetInt(key string, def int) int {
	raw, ok := p.GetString(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": raw}).Warn("setting is not an integer, using default")
		return def
	}
	return n
}

// GetBool returns the setting parsed as a boolean, or def when absent or malformed.
func (p *ConfigProvider) GetBool(key string, def bool) bool {
	raw, ok := p.GetString(key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	logrus.WithFields(logrus.Fields{"key": key, "value": raw}).Warn("setting is not a boolean, using default")
	return def
}

// Set upserts a setting and invalidates its cache entry.
func (p *ConfigProvider) Set(key, value string) error {
	var setting models.SystemSetting
	err := p.db.Where("`key` = ?", key).First(&setting).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		setting = models.SystemSetting{Key: key, Value: value}
		if err := p.db.Create(&setting).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if err := p.db.Model(&setting).Update("value", value).Error; err != nil {
			return err
		}
	}

	if p.redis != nil {
		ctx := context.Background()
		if err := p.redis.Del(ctx, settingsCachePrefix+key).Err(); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("settings cache invalidation failed")
		}
	}
	return nil
}

// EnsureDefaults inserts any missing default settings rows.
func (p *ConfigProvider) EnsureDefaults() error {
	for _, def := range DefaultSettings {
		var count int64
		if err := p.db.Model(&models.SystemSetting{}).Where("`key` = ?", def.Key).Count(&count).Error; err != nil {
			return fmt.Errorf("checking default setting %s: %w", def.Key, err)
		}
		if count > 0 {
			continue
		}
		row := def
		if err := p.db.Create(&row).Error; err != nil {
			return fmt.Errorf("seeding default setting %s: %w", def.Key, err)
		}
	}
	return nil
}
