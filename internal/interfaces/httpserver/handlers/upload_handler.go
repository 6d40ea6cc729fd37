package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"nexuschat/chat-api/internal/infrastructure/auth"
	"nexuschat/chat-api/internal/infrastructure/storage"
	"nexuschat/chat-api/internal/interfaces/httpserver/responses"
)

// UploadHandler hands out presigned URLs for media attachments. Clients
// upload directly to object storage and send the resulting URL inside a
// chat message.
type UploadHandler struct {
	storage *storage.S3Storage
	log     zerolog.Logger
}

func NewUploadHandler(store *storage.S3Storage, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		storage: store,
		log:     log.With().Str("component", "upload-handler").Logger(),
	}
}

type uploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// PrepareUpload godoc
// @Summary      Request presigned upload URL
// @Description  Generates a short-lived presigned PUT URL for a media attachment.
// @Tags         uploads
// @Accept       json
// @Produce      json
// @Param        request  body      uploadRequest  true  "Upload request"
// @Success      200      {object}  responses.UploadResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      501      {object}  responses.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /v1/uploads [post]
func (h *UploadHandler) PrepareUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: err.Error()})
		return
	}

	up, err := h.storage.PresignUpload(c.Request.Context(), auth.UserID(c), req.FileName, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			c.JSON(http.StatusNotImplemented, responses.ErrorResponse{Error: "object storage not configured"})
			return
		}
		h.log.Error().Err(err).Msg("presign upload failed")
		responses.HandleError(c, err, "failed to prepare upload")
		return
	}

	c.JSON(http.StatusOK, responses.BuildUploadResponse(up))
}
