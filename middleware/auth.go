package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	adminRepo "pharmalink/database/repository/admin"
	doctorRepo "pharmalink/database/repository/doctor"
	"pharmalink/models"
	"pharmalink/utils"
)

// Context keys set by AuthRequired.
const (
	CtxRole   = "authRole"
	CtxDoctor = "authDoctor"
	CtxAdmin  = "authAdmin"
)

// AuthRequired authenticates a Bearer token and requires the given role. The
// principal is loaded and stored on the context, and the token hash is
// checked against the auth cache so revoked tokens stop working before their
// JWT expiry.
func AuthRequired(role models.Role, doctors doctorRepo.DoctorRepository, admins adminRepo.AdminRepository, tokens utils.AuthTokenCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ExtractClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		tokenRole, err := models.ParseRole(claims.Role)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if tokenRole != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not authorized for this action"})
			return
		}

		if tokens != nil {
			valid, err := tokens.Valid(context.Background(), claims.Subject, utils.HashToken(tokenString))
			if err != nil || !valid {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token revoked or expired"})
				return
			}
		}

		switch tokenRole {
		case models.RoleDoctor:
			doc, err := doctors.GetByID(claims.Subject)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				return
			}
			c.Set(CtxDoctor, doc)
		case models.RoleAdmin:
			adm, err := admins.GetByID(claims.Subject)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				return
			}
			c.Set(CtxAdmin, adm)
		}

		c.Set(CtxRole, tokenRole)
		c.Next()
	}
}

// DoctorFromContext returns the authenticated doctor set by AuthRequired.
func DoctorFromContext(c *gin.Context) (*models.Doctor, bool) {
	v, ok := c.Get(CtxDoctor)
	if !ok {
		return nil, false
	}
	doc, ok := v.(*models.Doctor)
	return doc, ok
}

// AdminFromContext returns the authenticated admin set by AuthRequired.
func AdminFromContext(c *gin.Context) (*models.Admin, bool) {
	v, ok := c.Get(CtxAdmin)
	if !ok {
		return nil, false
	}
	adm, ok := v.(*models.Admin)
	return adm, ok
}
