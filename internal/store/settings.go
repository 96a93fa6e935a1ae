package store

import (
	"fmt"
	"strconv"

	"github.com/sadopc/liftr/internal/session"
)

const (
	keyDefaultRest   = "default_rest_time"
	keyAutoStartRest = "auto_start_rest"
	keyHaptics       = "haptics"
	keyKeepAwake     = "keep_awake"
	keySound         = "sound"
	keyTheme         = "theme"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// LoadAppSettings reads the engine settings. Missing or unparsable values
// fall back to the defaults.
func (s *Store) LoadAppSettings() (session.Settings, error) {
	out := session.DefaultSettings()
	all, err := s.GetAllSettings()
	if err != nil {
		return out, err
	}
	for _, kv := range all {
		switch kv.Key {
		case keyDefaultRest:
			if n, err := strconv.Atoi(kv.Value); err == nil && n > 0 {
				out.DefaultRestTime = n
			}
		case keyAutoStartRest:
			out.AutoStartRest = parseBool(kv.Value, out.AutoStartRest)
		case keyHaptics:
			out.Haptics = parseBool(kv.Value, out.Haptics)
		case keyKeepAwake:
			out.KeepAwake = parseBool(kv.Value, out.KeepAwake)
		case keySound:
			out.Sound = parseBool(kv.Value, out.Sound)
		case keyTheme:
			if kv.Value != "" {
				out.Theme = kv.Value
			}
		}
	}
	return out, nil
}

// SaveAppSettings writes every engine setting.
func (s *Store) SaveAppSettings(v session.Settings) error {
	return s.writeSettings(map[string]string{
		keyDefaultRest:   strconv.Itoa(v.DefaultRestTime),
		keyAutoStartRest: strconv.FormatBool(v.AutoStartRest),
		keyHaptics:       strconv.FormatBool(v.Haptics),
		keyKeepAwake:     strconv.FormatBool(v.KeepAwake),
		keySound:         strconv.FormatBool(v.Sound),
		keyTheme:         v.Theme,
	})
}

// ApplySettings writes only the fields set in p.
func (s *Store) ApplySettings(p session.SettingsPatch) error {
	kv := make(map[string]string)
	if p.DefaultRestTime != nil {
		kv[keyDefaultRest] = strconv.Itoa(*p.DefaultRestTime)
	}
	if p.AutoStartRest != nil {
		kv[keyAutoStartRest] = strconv.FormatBool(*p.AutoStartRest)
	}
	if p.Haptics != nil {
		kv[keyHaptics] = strconv.FormatBool(*p.Haptics)
	}
	if p.KeepAwake != nil {
		kv[keyKeepAwake] = strconv.FormatBool(*p.KeepAwake)
	}
	if p.Sound != nil {
		kv[keySound] = strconv.FormatBool(*p.Sound)
	}
	if p.Theme != nil {
		kv[keyTheme] = *p.Theme
	}
	return s.writeSettings(kv)
}

func (s *Store) writeSettings(kv map[string]string) error {
	if len(kv) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin settings: %w", err)
	}
	defer tx.Rollback()

	for k, v := range kv {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v,
		); err != nil {
			return fmt.Errorf("set setting %q: %w", k, err)
		}
	}
	return tx.Commit()
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
