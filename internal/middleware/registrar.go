package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// registrarIDKey is the key used to store the registrar's ID in the context.
const registrarIDKey = contextKey("registrarID")

// RegistrarIDHeader identifies the operator recording a transaction. The
// surrounding system authenticates operators; this service only records who
// acted.
const RegistrarIDHeader = "X-Registrar-ID"

// RegistrarContextMiddleware copies the registrar ID header into the request
// context so services can attribute writes.
func RegistrarContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if registrarID := c.GetHeader(RegistrarIDHeader); registrarID != "" {
			c.Set(string(registrarIDKey), registrarID)
			c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), registrarIDKey, registrarID))
		}
		c.Next()
	}
}

// GetRegistrarIDFromContext retrieves the registrar ID from the Gin context.
// It returns the ID and a boolean indicating if it was found.
func GetRegistrarIDFromContext(c *gin.Context) (string, bool) {
	registrarIDVal, exists := c.Get(string(registrarIDKey))
	if !exists {
		if v := c.Request.Context().Value(registrarIDKey); v != nil {
			return v.(string), true
		}
		return "", false
	}

	registrarID, ok := registrarIDVal.(string)
	if !ok {
		return "", false
	}

	return registrarID, true
}
