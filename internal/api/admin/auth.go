package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/tashware/muazzin/internal/http/middleware"
)

// body for logging in
type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AccountManager struct {
	jwtSecret     string
	adminEmail    string
	adminPassHash string
}

func accountManagementController(secret, adminEmail, adminPassHash string) *AccountManager {
	return &AccountManager{jwtSecret: secret, adminEmail: adminEmail, adminPassHash: adminPassHash}
}

// RegisterAuthRoutes mounts auth-related routes under /api/admin/auth.
func RegisterAuthRoutes(r gin.IRoutes, jwtSecret, adminEmail, adminPassHash string) {
	ctl := accountManagementController(jwtSecret, adminEmail, adminPassHash)

	r.POST("/auth/login", ctl.adminLogin)
}

// POST /api/admin/auth/login
func (a *AccountManager) adminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Email != a.adminEmail {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.adminPassHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := middleware.GenerateJWT(a.adminEmail, a.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
