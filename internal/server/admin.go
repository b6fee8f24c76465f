package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
)

func (s *Server) ListAccounts(c *gin.Context) {
	accounts, err := s.accountSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (s *Server) AdminUpdateAccount(c *gin.Context) {
	accountID, err := pathID(c, "account_id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req accountdomain.AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.accountSvc.AdminUpdate(c.Request.Context(), accountID, req); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) AdminRemoveAccount(c *gin.Context) {
	accountID, err := pathID(c, "account_id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.accountSvc.Remove(c.Request.Context(), accountID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
