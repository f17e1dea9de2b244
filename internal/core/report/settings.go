package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ogurasousui/isg-tracker/internal/core/marker"
)

// SettingsKey は自動レポート設定を保持するマーカーのキーです。
const SettingsKey = "settings"

var ErrInvalidSettings = errors.New("report: invalid settings")

// Settings は自動レポートの実行曜日と時刻です。
type Settings struct {
	Weekday   time.Weekday `json:"autoReportDay"`
	TimeOfDay string       `json:"autoReportTime"`
}

// DefaultSettings は金曜 17:00 です。
func DefaultSettings() Settings {
	return Settings{Weekday: time.Friday, TimeOfDay: "17:00"}
}

// Validate は曜日と HH:MM 形式を検証します。
func (s Settings) Validate() error {
	if s.Weekday < time.Sunday || s.Weekday > time.Saturday {
		return fmt.Errorf("weekday %d: %w", s.Weekday, ErrInvalidSettings)
	}
	if _, err := time.Parse("15:04", s.TimeOfDay); err != nil || len(s.TimeOfDay) != 5 {
		return fmt.Errorf("time %q: %w", s.TimeOfDay, ErrInvalidSettings)
	}
	return nil
}

// LoadSettings は保存済み設定を読み込みます。未保存なら既定値です。
func LoadSettings(ctx context.Context, store marker.Store) (Settings, error) {
	raw, ok, err := store.Get(ctx, SettingsKey)
	if err != nil {
		return Settings{}, fmt.Errorf("report: load settings: %w", err)
	}
	if !ok || raw == "" {
		return DefaultSettings(), nil
	}

	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Settings{}, fmt.Errorf("report: decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// SaveSettings は設定を検証して保存します。
func SaveSettings(ctx context.Context, store marker.Store, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("report: encode settings: %w", err)
	}
	if err := store.Set(ctx, SettingsKey, string(raw)); err != nil {
		return fmt.Errorf("report: save settings: %w", err)
	}
	return nil
}
