package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/reelgate/reelgate/internal/catalog/domain"
)

func (s *Server) GetTitle(c *gin.Context) {
	titleID, err := pathID(c, "title_id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	title, err := s.catalogSvc.Get(c.Request.Context(), titleID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{
		"id":          title.ID,
		"name":        title.Name,
		"description": title.Description,
		"stream_url":  title.StreamURL,
	}
	if verdict := gateVerdict(c); verdict != nil && verdict.Renewed {
		resp["renewed"] = true
		resp["balance"] = verdict.Balance
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListTitles(c *gin.Context) {
	titles, err := s.catalogSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"titles": titles})
}

func (s *Server) CreateTitle(c *gin.Context) {
	var req catalogdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	title, err := s.catalogSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, title)
}

func (s *Server) UpdateTitle(c *gin.Context) {
	titleID, err := pathID(c, "title_id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req catalogdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.catalogSvc.Update(c.Request.Context(), titleID, req); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) DeleteTitle(c *gin.Context) {
	titleID, err := pathID(c, "title_id")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.catalogSvc.Remove(c.Request.Context(), titleID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
