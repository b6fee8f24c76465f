package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/reelgate/reelgate/internal/apikey/domain"
)

type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

type SetAPIKeyStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) ListAPIKeys(c *gin.Context) {
	keys, err := s.apiKeySvc.List(c.Request.Context(), sessionAccountID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

func (s *Server) CreateAPIKey(c *gin.Context) {
	var req CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.apiKeySvc.Create(c.Request.Context(), sessionAccountID(c), req.Name)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) RevokeAPIKey(c *gin.Context) {
	keyID, err := pathID(c, "key_id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.apiKeySvc.Revoke(c.Request.Context(), sessionAccountID(c), keyID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) SetAPIKeyStatus(c *gin.Context) {
	keyID, err := pathID(c, "key_id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req SetAPIKeyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.apiKeySvc.SetStatus(c.Request.Context(), keyID, apikeydomain.Status(req.Status)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func pathID(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
