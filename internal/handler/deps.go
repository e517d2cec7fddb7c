package handler

import (
	"uchat/internal/app/chat"
	"uchat/internal/app/storage"
	"uchat/internal/app/user"
	"uchat/internal/configs"
)

// AppDeps bundles the shared dependencies injected into every handler.
type AppDeps struct {
	Hub       *chat.Hub
	Config    *configs.AppConfig
	Directory *user.Directory
	Store     chat.MessageStore

	// Storage is nil when no attachment backend is configured.
	Storage storage.Service
}
