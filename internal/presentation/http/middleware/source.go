package middleware

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/policy"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/response"
)

// SourceHeader selects the business unit a request acts on
const SourceHeader = "X-Source-ID"

const (
	ctxSourceID = "source_id"
	ctxMember   = "member"
)

// MembershipLookup resolves a user's membership in a source
type MembershipLookup interface {
	GetMembership(ctx context.Context, sourceID, userID uuid.UUID) (*entity.SourceMember, error)
}

// SourceMiddleware resolves the X-Source-ID header, checks the caller belongs to
// that source and scopes the request context to it
func SourceMiddleware(members MembershipLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(SourceHeader)
		if raw == "" {
			response.BadRequest(c, "X-Source-ID header is required")
			c.Abort()
			return
		}
		sourceID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid X-Source-ID header")
			c.Abort()
			return
		}

		userID := GetUserID(c)
		if userID == uuid.Nil {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		member, err := members.GetMembership(c.Request.Context(), sourceID, userID)
		if err != nil {
			log.Printf("membership lookup failed for source %s: %v", sourceID, err)
			response.InternalServerError(c, "Failed to resolve source membership")
			c.Abort()
			return
		}
		if member == nil {
			response.Forbidden(c, "Access denied to this source")
			c.Abort()
			return
		}

		c.Set(ctxSourceID, sourceID)
		c.Set(ctxMember, member)

		// Repositories read the scope from the request context
		ctx := repository.WithSource(c.Request.Context(), sourceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireAction rejects members whose role and access flags do not permit the action
func RequireAction(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		member := GetMember(c)
		if member == nil {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}
		if !policy.AllowedFor(member.Access(), action) {
			response.Forbidden(c, "You do not have permission to perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSourceID retrieves the source ID from gin context
func GetSourceID(c *gin.Context) uuid.UUID {
	v, exists := c.Get(ctxSourceID)
	if !exists {
		return uuid.Nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// GetMember retrieves the caller's membership from gin context
func GetMember(c *gin.Context) *entity.SourceMember {
	v, exists := c.Get(ctxMember)
	if !exists {
		return nil
	}
	member, _ := v.(*entity.SourceMember)
	return member
}
