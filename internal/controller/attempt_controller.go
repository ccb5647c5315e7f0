package controller

import (
	"quizify_backend/internal/service"
	"quizify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Results *service.ResultsService
}

func NewAttemptController(results *service.ResultsService) *AttemptController {
	return &AttemptController{Results: results}
}

// @Summary 我的答题记录
// @Tags 成绩
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/attempts [get]
func (c *AttemptController) ListMine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts := c.Results.ListAttempts(user.UserID)
	util.Success(ctx, gin.H{"items": attempts, "total": len(attempts)})
}

// @Summary 答题详情
// @Description 学生本人、测验创建者或管理员可查看
// @Tags 成绩
// @Produce json
// @Security BearerAuth
// @Param id path string true "答题记录ID"
// @Success 200 {object} util.Response{data=service.AttemptDetail}
// @Router /api/attempts/{id} [get]
func (c *AttemptController) GetDetail(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.Results.AttemptDetail(user.UserID, user.Role, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}
