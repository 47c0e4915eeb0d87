package repository

import (
	"github.com/levelup-fitness/levelup-core/internal/domain/clan"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/kv"
)

// ClanRepository stores every clan under levelup_clans.
type ClanRepository struct {
	*kv.Repository[clan.Store]
}

var _ clan.Repository = (*ClanRepository)(nil)

// NewClanRepository creates the clan repository.
func NewClanRepository(deps Deps) *ClanRepository {
	deps = deps.withDefaults()
	return &ClanRepository{kv.NewRepository(kv.Options[clan.Store]{
		Key:       ClansKey,
		Version:   ClansVersion,
		Store:     deps.Store,
		Default:   clan.NewStore,
		Normalize: (*clan.Store).Normalize,
		Validate:  clan.Store.Validate,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
		Hooks:     deps.Hooks,
	})}
}
