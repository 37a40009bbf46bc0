package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/dropin-rota/internal/config"
)

// AppContext holds the dependencies every command needs: configuration,
// structured logging, and a cancellation context. There is no database or
// external API client here — the engine this CLI drives is pure, and its
// input is a file on disk.
type AppContext struct {
	Cfg    *config.Config
	Logger *zap.Logger
	Ctx    context.Context
}
