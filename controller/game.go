package controller

import (
	"net/http"

	"go-splendor/dto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RunSelfPlay 同步跑完若干局纯 AI 对局
func (ctl *Controller) RunSelfPlay(c *gin.Context) {
	var req dto.SelfPlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := ctl.SelfPlay.Run(c.Request.Context(), req)
	if err != nil {
		ctl.Log.Error("❌ 自我对局失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status_code": http.StatusOK, "data": resp})
}

// IssueToken 给 userID 签发 access/refresh 令牌
func (ctl *Controller) IssueToken(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少必要字段"})
		return
	}
	access, err := ctl.Tokens.GenerateAccessToken(req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	refresh, err := ctl.Tokens.GenerateRefreshToken(req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status_code": http.StatusOK,
		"data":        dto.TokenResponse{AccessToken: access, RefreshToken: refresh},
	})
}
