package app

import (
	"quizify_backend/docs"
	"quizify_backend/internal/config"
	"quizify_backend/internal/middleware"
	"quizify_backend/internal/model"
	"quizify_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, s.auth))
	{
		// 学生/通用 授权接口
		a.registerStudentRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/logout", c.auth.Logout)
	rg.GET("/profile", c.auth.Profile)
	rg.GET("/dashboard", c.dashboard.Student)

	// 测验浏览
	rg.GET("/quizzes", c.quiz.ListPublished)
	rg.GET("/quizzes/:id", c.quiz.GetForStudent)
	rg.POST("/quizzes/:id/sessions", c.session.Start)

	// 答题会话
	sessions := rg.Group("/sessions/:sid")
	{
		sessions.GET("", c.session.Get)
		sessions.DELETE("", c.session.Discard)
		sessions.PUT("/answers/:qid", c.session.Answer)
		sessions.POST("/next", c.session.Next)
		sessions.POST("/prev", c.session.Prev)
		sessions.POST("/jump", c.session.Jump)
		sessions.POST("/submit", c.session.Submit)
	}

	// 成绩
	rg.GET("/attempts", c.attempt.ListMine)
	rg.GET("/attempts/:id", c.attempt.GetDetail)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/documents", c.document.Upload)
		teacher.POST("/documents/text", c.document.GenerateFromText)

		teacher.GET("/quizzes", c.quiz.ListMyQuizzes)
		teacher.POST("/quizzes", c.quiz.CreateQuiz)
		teacher.GET("/quizzes/:id", c.quiz.GetQuiz)
		teacher.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		teacher.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)

		teacher.GET("/dashboard", c.dashboard.Teacher)
	}
}
