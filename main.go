// @title Quizify 后端 API
// @version 1.0
// @description Quizify 测验平台的后端服务器：从课程文档生成题目、组卷、限时答题与成绩统计。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"
	"quizify_backend/internal/app"
	"quizify_backend/internal/config"
	"quizify_backend/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
