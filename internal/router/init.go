package router

import (
	"github.com/oksasatya/go-board-chat/internal/container"
	handlers "github.com/oksasatya/go-board-chat/internal/interface/http"
	"github.com/oksasatya/go-board-chat/internal/router/modules"
)

// InitModules builds the handlers from c and adds every feature module to r.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	limits := c.RateLimitStore()

	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(c.Auth, c.Logger),
		limits,
		c.Config.LoginRateLimit,
		c.Logger,
	))
	r.Add(modules.NewBoardModule(handlers.NewBoardHandler(c.Boards, c.Logger), c.Tokens, limits, c.Logger))
	r.Add(modules.NewChatModule(handlers.NewChatHandler(c.Chat), c.Sessions))
	r.Add(modules.NewHealthModule(c.Sessions))
	if c.Config.MetricsEnabled {
		r.Add(modules.NewDebugModule(limits, c.Logger))
	}
}
