package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/reelgate/reelgate/internal/accountcontext"
	meteringdomain "github.com/reelgate/reelgate/internal/metering/domain"
	obscontext "github.com/reelgate/reelgate/internal/observability/context"
)

const (
	// HeaderAPIKey carries the metered credential on protected calls.
	HeaderAPIKey = "X-API-Key"

	contextVerdictKey = "gate_verdict"
)

// APIKeyRequired runs the metering gate on the credential header. Requests
// only reach the wrapped handler on an allow verdict; renewal, when due,
// already happened by then.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		verdict, err := s.meteringSvc.Authorize(c.Request.Context(), c.GetHeader(HeaderAPIKey))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextVerdictKey, verdict)

		ctx := accountcontext.WithAccountID(c.Request.Context(), verdict.AccountID)
		ctx = obscontext.WithActorID(ctx, strconv.FormatInt(verdict.AccountID, 10))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func gateVerdict(c *gin.Context) *meteringdomain.Verdict {
	value, ok := c.Get(contextVerdictKey)
	if !ok {
		return nil
	}
	verdict, _ := value.(*meteringdomain.Verdict)
	return verdict
}
