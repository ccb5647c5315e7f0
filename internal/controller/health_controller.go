package controller

import (
	"net/http"
	"quizify_backend/internal/util"
	"quizify_backend/pkg/database"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	KV       database.KVStore
	Sessions interface{ Count() int }
}

func NewHealthController(kv database.KVStore, sessions interface{ Count() int }) *HealthController {
	return &HealthController{KV: kv, Sessions: sessions}
}

// @Summary 健康检查
// @Description 检查服务与存储状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查存储连接
	if err := c.KV.Ping(ctx.Request.Context()); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Store unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"store": "up",
		},
		"activeSessions": c.Sessions.Count(),
	})
}
