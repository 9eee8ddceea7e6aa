package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messagely/internal/domain"
)

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]PublicUserResponse, len(users))
	for i := range users {
		resp[i] = publicUserToResponse(users[i])
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userDetailToResponse(*user)})
}

func (h *Handler) messagesTo(c *gin.Context) {
	msgs, err := h.users.MessagesTo(c.Request.Context(), c.Param("username"), identity(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": summariesToResponse(msgs, "from_user")})
}

func (h *Handler) messagesFrom(c *gin.Context) {
	msgs, err := h.users.MessagesFrom(c.Request.Context(), c.Param("username"), identity(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": summariesToResponse(msgs, "to_user")})
}

func summariesToResponse(msgs []domain.MessageSummary, peerKey string) []gin.H {
	resp := make([]gin.H, len(msgs))
	for i := range msgs {
		resp[i] = gin.H{
			"id":      msgs[i].ID,
			peerKey:   publicUserToResponse(msgs[i].Peer),
			"body":    msgs[i].Body,
			"sent_at": formatTime(msgs[i].SentAt),
			"read_at": formatTimePtr(msgs[i].ReadAt),
		}
	}
	return resp
}
