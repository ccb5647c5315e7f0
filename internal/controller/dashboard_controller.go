package controller

import (
	"quizify_backend/internal/service"
	"quizify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Results *service.ResultsService
}

func NewDashboardController(results *service.ResultsService) *DashboardController {
	return &DashboardController{Results: results}
}

// @Summary 学生仪表盘
// @Description 完成数、平均分、总用时及每个测验的最佳与最近成绩
// @Tags 成绩
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.StudentDashboard}
// @Router /api/dashboard [get]
func (c *DashboardController) Student(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, c.Results.StudentDashboard(user.UserID))
}

// @Summary 教师仪表盘
// @Tags 成绩
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.TeacherDashboard}
// @Router /api/teacher/dashboard [get]
func (c *DashboardController) Teacher(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, c.Results.TeacherDashboard(user.UserID))
}
