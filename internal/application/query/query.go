// Package query contains read operations (CQRS - Queries). Queries never
// change domain state: a stale day is presented as the fresh day it would
// become, and a dangling clan pointer is shown as resolved, but neither is
// persisted until the next command runs. Repository reads may still store a
// default for an absent record or an upgraded envelope.
package query

import (
	"log/slog"

	"github.com/levelup-fitness/levelup-core/internal/domain/analytics"
	"github.com/levelup-fitness/levelup-core/internal/domain/clan"
	"github.com/levelup-fitness/levelup-core/internal/domain/daily"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
)

// Deps are the read-side dependencies shared by the query handlers.
type Deps struct {
	Users   user.Repository
	Daily   daily.Repository
	History analytics.Repository
	Clans   clan.Repository
	Clock   shared.Clock
	Logger  *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = shared.SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}
