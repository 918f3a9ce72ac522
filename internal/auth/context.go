package auth

import "github.com/gin-gonic/gin"

// Keys under which the auth middleware stores the caller on the gin context.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextUserRole  = "userRole"
	ContextClaims    = "authClaims"
)

// SetCurrent attaches verified claims to the request context.
func SetCurrent(c *gin.Context, claims *Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserEmail, claims.Email)
	c.Set(ContextUserRole, claims.Role)
	c.Set(ContextClaims, claims)
}

// CurrentUserID returns the authenticated user id.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// CurrentClaims returns the verified token claims.
func CurrentClaims(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
