// Package repository binds each domain aggregate to a versioned kv record:
// its storage key, schema version, default value and migration chain.
package repository

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/idgen"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/kv"
)

// Storage keys and current schema versions.
const (
	UserKey     = "levelup_user"
	UserVersion = 3

	DailyKey     = "levelup_daily"
	DailyVersion = 1

	HistoryKey     = "levelup_history"
	HistoryVersion = 2

	ClansKey     = "levelup_clans"
	ClansVersion = 1
)

// Deps are shared by every repository.
type Deps struct {
	Store  kv.DataStore
	Clock  shared.Clock
	IDs    shared.IDGenerator
	Logger *slog.Logger
	Hooks  kv.Hooks

	// DefaultTimeZone seeds new users and backfills legacy ones. Blank means UTC.
	DefaultTimeZone string
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = shared.SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.IDs == nil {
		d.IDs = idgen.UUID{}
	}
	if d.DefaultTimeZone == "" {
		d.DefaultTimeZone = "UTC"
	}
	return d
}

// Set groups the four repositories of the application.
type Set struct {
	Users   *UserRepository
	Daily   *DailyRepository
	History *AnalyticsRepository
	Clans   *ClanRepository
}

// NewSet builds every repository over the same store.
func NewSet(deps Deps) Set {
	return Set{
		Users:   NewUserRepository(deps),
		Daily:   NewDailyRepository(deps),
		History: NewAnalyticsRepository(deps),
		Clans:   NewClanRepository(deps),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RAW DOCUMENT HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// document is a JSON object under migration.
type document map[string]any

func parseDocument(raw json.RawMessage) (document, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document is null")
	}
	return doc, nil
}

func (d document) encode() (json.RawMessage, error) {
	return json.Marshal(d)
}

// object returns the nested object at key, creating it when it is missing or
// has the wrong type.
func (d document) object(key string) document {
	if m, ok := d[key].(map[string]any); ok {
		return document(m)
	}
	m := document{}
	d[key] = map[string]any(m)
	return m
}

// setDefault stores value at key unless a value of the same JSON kind exists.
func (d document) setDefault(key string, value any) {
	current, ok := d[key]
	if !ok || current == nil {
		d[key] = value
		return
	}
	switch value.(type) {
	case bool:
		if _, isBool := current.(bool); !isBool {
			d[key] = value
		}
	case int, float64:
		if _, isNum := current.(float64); !isNum {
			d[key] = value
		}
	case string:
		if s, isStr := current.(string); !isStr || s == "" {
			d[key] = value
		}
	case []any:
		if _, isArr := current.([]any); !isArr {
			d[key] = value
		}
	case map[string]any:
		if _, isObj := current.(map[string]any); !isObj {
			d[key] = value
		}
	}
}
