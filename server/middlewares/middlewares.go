package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inkwell/blog"
	"inkwell/policy"
)

// actorKey is where the resolved actor lives in the gin context.
const actorKey = "actor"

var (
	// service resolves validated user ids into actors with their role
	// attached. Must be set through Setup before any middleware runs.
	service *blog.Service
)

// Setup initializes the package scoped service handle. This function must be
// called before any middleware is used.
func Setup(svc *blog.Service) {
	service = svc
}

// bearerToken extracts the access token from the Authorization header,
// accepting the standard "Bearer <token>" shape only.
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

// resolve validates the bearer token and builds the actor. Any failure
// (missing, malformed, expired token, vanished account) yields the anonymous
// actor and false.
func resolve(c *gin.Context) (policy.Actor, bool) {
	token := bearerToken(c)
	if token == "" {
		return policy.Anonymous, false
	}
	userID, err := service.Tokens().Validate(token)
	if err != nil {
		return policy.Anonymous, false
	}
	actor, err := service.Actor(c.Request.Context(), userID)
	if err != nil {
		return policy.Anonymous, false
	}
	return actor, true
}

// ResolveActor attaches the actor for endpoints that serve both anonymous and
// authenticated requests; an unusable token just reads as anonymous here.
func ResolveActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := resolve(c)
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireAuth rejects requests without a valid access token. The failure body
// never distinguishes missing from expired from malformed.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := resolve(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor a middleware attached, or the anonymous actor
// when none did.
func ActorFrom(c *gin.Context) policy.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(policy.Actor); ok {
			return actor
		}
	}
	return policy.Anonymous
}
