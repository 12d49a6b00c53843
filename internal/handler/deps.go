package handler

import (
	"messenger/internal/app/chat"
	"messenger/internal/configs"
)

type AppDeps struct {
	Hub    *chat.Hub
	Config *configs.AppConfig
}
