package server

import (
	"strings"

	authdomain "github.com/altibbe/hedamo/internal/auth/domain"
	obscontext "github.com/altibbe/hedamo/internal/observability/context"
	"github.com/altibbe/hedamo/internal/ratelimit"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const identityKey = "identity"

// ResolveIdentity attaches the authenticated user to the request when a
// valid bearer token is present. It never rejects; enforcement is
// AuthRequired's job. Resolution runs before admission so authenticated
// traffic is limited per user, not per address.
func (s *Server) ResolveIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		identity, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil || identity == nil {
			c.Next()
			return
		}

		c.Set(identityKey, identity)
		ctx := obscontext.WithUserID(c.Request.Context(), identity.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identityFrom(c); !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// Admission enforces the request budget per caller. Limiter failures are
// logged and cost the single request, never the process.
func (s *Server) Admission() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := admissionKey(c)

		result, err := s.limiter.Allow(c.Request.Context(), key)
		if err != nil {
			s.log.Error("admission check failed", zap.Error(err))
			AbortWithError(c, &RateLimitError{RetryAfter: 1})
			return
		}
		if !result.Allowed {
			s.metrics.RecordRateLimitDenied(c.Request.Context(), c.FullPath())
			AbortWithError(c, &RateLimitError{
				RetryAfter: ratelimit.RetryAfterSeconds(result.RetryAfter),
			})
			return
		}

		s.metrics.RecordRateLimitAllowed(c.Request.Context(), c.FullPath())
		c.Next()
	}
}

func admissionKey(c *gin.Context) string {
	if identity, ok := identityFrom(c); ok {
		return identity.UserID
	}
	return c.ClientIP()
}

func identityFrom(c *gin.Context) (*authdomain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*authdomain.Identity)
	return identity, ok && identity != nil
}

// currentUserID returns the caller's ID; routes behind AuthRequired always
// have one.
func currentUserID(c *gin.Context) (snowflake.ID, bool) {
	identity, ok := identityFrom(c)
	if !ok {
		return 0, false
	}
	id, err := snowflake.ParseString(identity.UserID)
	if err != nil {
		return 0, false
	}
	return id, true
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
