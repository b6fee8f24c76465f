package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/reelgate/reelgate/internal/billing/domain"
)

// webhookBodyLimit caps provider deliveries; real events are a few KB.
const webhookBodyLimit = 1 << 20

func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err = s.billingSvc.IngestWebhook(
		c.Request.Context(),
		c.Param("provider"),
		c.GetHeader("Stripe-Signature"),
		body,
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (s *Server) CreateTopup(c *gin.Context) {
	var req billingdomain.TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.billingSvc.CreateTopup(c.Request.Context(), sessionAccountID(c), req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
