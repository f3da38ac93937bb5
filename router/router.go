package router

import (
	"go-splendor/controller"
	"go-splendor/middleware"
	"go-splendor/ws"

	"github.com/gin-gonic/gin"
)

func InitRouter(r *gin.Engine, ctl *controller.Controller, hub *ws.Hub) {
	r.POST("/auth/token", ctl.IssueToken)

	auth := middleware.AuthMiddleware(ctl.Tokens)

	// 房间接口路由
	api := r.Group("/room", auth)
	{
		api.POST("/create", ctl.CreateRoom)
		api.GET("/list", ctl.GetRoomList)
		api.GET("/:roomID", ctl.GetRoomInfo)
		api.DELETE("/:roomID", ctl.DeleteRoom)
	}
	r.GET("/results", auth, ctl.GetWins)
	r.GET("/results/:roomID", auth, ctl.GetResults)
	r.POST("/training/selfplay", auth, ctl.RunSelfPlay)

	// WebSocket 路由
	r.GET("/ws", hub.HandleWebSocket)
}
