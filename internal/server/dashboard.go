package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
)

type LinkTelegramRequest struct {
	ChatID string `json:"chat_id"`
}

func (s *Server) GetProfile(c *gin.Context) {
	profile, err := s.accountSvc.GetProfile(c.Request.Context(), sessionAccountID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) UpdateProfile(c *gin.Context) {
	var req accountdomain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.accountSvc.UpdateProfile(c.Request.Context(), sessionAccountID(c), req); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) GetStats(c *gin.Context) {
	stats, err := s.accountSvc.Stats(c.Request.Context(), sessionAccountID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) LinkTelegram(c *gin.Context) {
	var req LinkTelegramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.accountSvc.LinkTelegram(c.Request.Context(), sessionAccountID(c), strings.TrimSpace(req.ChatID)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListTransactions(c *gin.Context) {
	txns, err := s.ledgerSvc.List(c.Request.Context(), sessionAccountID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}
