package router

import (
	"github.com/gin-gonic/gin"
	_ "github.com/minicrm/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// mountSwagger serves the API docs at /swagger/index.html and the raw document at /swagger/doc.json
func mountSwagger(engine *gin.Engine) {
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
