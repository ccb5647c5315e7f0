package controller

import (
	"quizify_backend/internal/service"
	"quizify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DocumentController struct {
	Service *service.DocumentService
}

func NewDocumentController(svc *service.DocumentService) *DocumentController {
	return &DocumentController{Service: svc}
}

// @Summary 上传课程文档生成题目
// @Description 支持 PDF 与纯文本，最大 10MB，返回打乱后的最多 12 道题
// @Tags 题目生成
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "课程文档"
// @Success 200 {object} util.Response{data=service.GeneratedPool}
// @Failure 413 {object} util.Response
// @Failure 415 {object} util.Response
// @Router /api/teacher/documents [post]
func (c *DocumentController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "请选择要上传的文件")
		return
	}
	if fileHeader.Size > util.MaxDocumentSize {
		respondError(ctx, util.ErrDocumentTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	pool, err := c.Service.Ingest(ctx.Request.Context(), fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, pool)
}

type GenerateTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// @Summary 根据文本生成题目
// @Tags 题目生成
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GenerateTextRequest true "课程文本"
// @Success 200 {object} util.Response{data=service.GeneratedPool}
// @Router /api/teacher/documents/text [post]
func (c *DocumentController) GenerateFromText(ctx *gin.Context) {
	var req GenerateTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, c.Service.GenerateFromText(req.Text))
}
