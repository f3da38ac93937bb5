package controller

import (
	"errors"
	"net/http"

	"go-splendor/dto"
	"go-splendor/service"
	"go-splendor/utils"
	"go-splendor/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Controller HTTP 接口
type Controller struct {
	Rooms    *service.RoomService
	SelfPlay *service.SelfPlayService
	Tokens   *utils.TokenIssuer
	Log      *zap.Logger
}

func (ctl *Controller) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少必要字段"})
		return
	}
	if req.UserID == "" {
		req.UserID = c.GetString("userID")
	}

	roomID, err := ctl.Rooms.CreateRoom(c.Request.Context(), req)
	if err != nil {
		ctl.Log.Error("❌ 创建房间失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status_code": http.StatusOK,
		"msg":         "房间创建成功",
		"data": dto.CreateRoomResponse{
			RoomID: roomID,
		},
	})
}

func (ctl *Controller) DeleteRoom(c *gin.Context) {
	var req dto.DeleteRoomRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少必要字段"})
		return
	}
	if err := ctl.Rooms.DeleteRoom(c.Request.Context(), req); err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status_code": http.StatusOK,
		"msg":         "房间删除成功",
	})
}

func (ctl *Controller) GetRoomList(c *gin.Context) {
	rooms, err := ctl.Rooms.GetRoomList(c.Request.Context())
	if err != nil {
		ctl.Log.Error("❌ 获取房间列表失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "获取房间列表失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "获取成功",
		"status_code": http.StatusOK,
		"data": dto.GetRoomList{
			Rooms: rooms,
		},
	})
}

func (ctl *Controller) GetRoomInfo(c *gin.Context) {
	info, err := ctl.Rooms.GetRoomInfo(c.Request.Context(), c.Param("roomID"))
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status_code": http.StatusOK, "data": info})
}

func (ctl *Controller) GetResults(c *gin.Context) {
	rows, err := ctl.Rooms.GetResults(c.Request.Context(), c.Param("roomID"))
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status_code": http.StatusOK, "data": rows})
}

// GetWins 排行榜
func (ctl *Controller) GetWins(c *gin.Context) {
	wins, err := ctl.Rooms.GetWins(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status_code": http.StatusOK, "data": wins})
}

func statusOf(err error) int {
	if errors.Is(err, ws.ErrRoomNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
