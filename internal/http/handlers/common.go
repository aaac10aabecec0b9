package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
	"github.com/yungbote/neurochat-backend/internal/services"
)

func dbcFrom(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// parseChatID treats a malformed id like any other chat the caller cannot see.
func parseChatID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, services.ErrChatNotFound
	}
	return id, nil
}

func clientMeta(c *gin.Context) services.ClientMeta {
	return services.ClientMeta{
		UserAgent: c.Request.UserAgent(),
		IP:        c.ClientIP(),
	}
}
