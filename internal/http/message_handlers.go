package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	msg, err := h.messages.Create(c.Request.Context(), identity(c), req.ToUsername, req.Body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": messageToResponse(*msg)})
}

func (h *Handler) getMessage(c *gin.Context) {
	detail, err := h.messages.Get(c.Request.Context(), c.Param("id"), identity(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": messageDetailToResponse(*detail)})
}

func (h *Handler) markRead(c *gin.Context) {
	receipt, err := h.messages.MarkRead(c.Request.Context(), c.Param("id"), identity(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": ReadReceiptResponse{
		ID:     receipt.ID,
		ReadAt: formatTime(receipt.ReadAt),
	}})
}
