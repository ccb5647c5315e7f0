package controller

import (
	"quizify_backend/internal/model"
	"quizify_backend/internal/service"
	"quizify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Service *service.SessionService
}

func NewSessionController(svc *service.SessionService) *SessionController {
	return &SessionController{Service: svc}
}

// @Summary 开始答题
// @Description 限时测验从此刻开始倒计时，时间到自动交卷
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param id path string true "测验ID"
// @Success 201 {object} util.Response{data=service.SessionView}
// @Router /api/quizzes/{id}/sessions [post]
func (c *SessionController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Service.Start(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, view)
}

// @Summary 答题状态
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /api/sessions/{sid} [get]
func (c *SessionController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Service.Get(user.UserID, ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

type AnswerRequest struct {
	// 选择题/判断题为选项下标，简答题为文本
	Answer *model.Answer `json:"answer" binding:"required" swaggertype:"string"`
}

// @Summary 作答
// @Tags 答题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sid path string true "会话ID"
// @Param qid path string true "题目ID"
// @Param body body AnswerRequest true "答案"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /api/sessions/{sid}/answers/{qid} [put]
func (c *SessionController) Answer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Service.Answer(user.UserID, ctx.Param("sid"), ctx.Param("qid"), *req.Answer)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary 下一题
// @Description 当前题目必须先作答
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 409 {object} util.Response
// @Router /api/sessions/{sid}/next [post]
func (c *SessionController) Next(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Service.Next(user.UserID, ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary 上一题
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /api/sessions/{sid}/prev [post]
func (c *SessionController) Prev(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Service.Prev(user.UserID, ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

type JumpRequest struct {
	Index *int `json:"index" binding:"required"`
}

// @Summary 跳转到指定题目
// @Tags 答题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sid path string true "会话ID"
// @Param body body JumpRequest true "题目序号（从 0 开始）"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /api/sessions/{sid}/jump [post]
func (c *SessionController) Jump(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req JumpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Service.Jump(user.UserID, ctx.Param("sid"), *req.Index)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary 交卷
// @Description 重复交卷返回同一条答题记录
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response{data=model.Attempt}
// @Router /api/sessions/{sid}/submit [post]
func (c *SessionController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.Service.Submit(ctx.Request.Context(), user.UserID, ctx.Param("sid"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

// @Summary 放弃答题
// @Description 不保存任何记录
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param sid path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{sid} [delete]
func (c *SessionController) Discard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sid := ctx.Param("sid")
	if err := c.Service.Discard(user.UserID, sid); err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"discarded": sid})
}
