package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskbuddy/backend/domain"
	"github.com/taskbuddy/backend/internal/infrastructure/blobstore"
	"github.com/taskbuddy/backend/pkg/httpcontext"
)

// AttachmentHandler hosts task image attachments: authenticated uploads,
// public downloads. Tasks only ever store the returned URL.
type AttachmentHandler struct {
	baseHandler
	store         *blobstore.Store
	publicBaseURL string
	maxUploadSize int64
}

func NewAttachmentHandler(store *blobstore.Store, publicBaseURL string, maxUploadSize int64, adapter *httpcontext.Adapter, logger *zap.Logger) *AttachmentHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 5 << 20
	}
	return &AttachmentHandler{
		baseHandler:   newBaseHandler(adapter, logger),
		store:         store,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		maxUploadSize: maxUploadSize,
	}
}

// @Summary Upload an image, returns its public URL
// @Tags attachments
// @Router /api/v1/attachments [post]
func (h *AttachmentHandler) Upload(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		h.respondInvalid(ctx, "missing file")
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		h.respondInvalid(ctx, "file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if int64(len(data)) > h.maxUploadSize {
		h.respondInvalid(ctx, "file too large")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		h.respondInvalid(ctx, "only image uploads are accepted")
		return
	}

	blob, err := h.store.Put(blobstore.Blob{
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.logger.Info("attachment stored",
		zap.String("blob_id", blob.ID),
		zap.String("user_id", userID),
		zap.Int("bytes", len(data)))

	h.respondSuccess(ctx, http.StatusCreated, map[string]string{
		"url": fmt.Sprintf("%s/attachments/%s", h.publicBaseURL, blob.ID),
	})
}

// @Summary Serve a stored attachment
// @Tags attachments
// @Router /attachments/{id} [get]
func (h *AttachmentHandler) Serve(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing attachment id")
		return
	}

	blob, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			h.respondError(ctx, domain.ErrAttachmentNotFound)
			return
		}
		h.respondError(ctx, err)
		return
	}

	ctx.Response.Header.SetContentType(blob.ContentType)
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(blob.Data)
}
