package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// register creates the account and logs it in straight away.
func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.auth.Register(ctx, req.Username, req.Password, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		h.writeError(c, err)
		return
	}

	token, err := h.auth.IssueToken(user.Username)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.auth.RecordLogin(ctx, user.Username); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  publicUserToResponse(*user),
		"token": token,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
