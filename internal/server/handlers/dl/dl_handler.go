package dl

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stopperw/modsync/internal/api"
	"github.com/stopperw/modsync/internal/server/blob"
	"github.com/stopperw/modsync/internal/server/modpack"
)

type Handler struct {
	modpacks *modpack.Service
	blobs    *blob.Store
}

func New(modpacks *modpack.Service, blobs *blob.Store) *Handler {
	return &Handler{modpacks: modpacks, blobs: blobs}
}

// DownloadByHash handles GET /dl/hash/:hash. Downloads are keyed purely by
// digest; knowing one is the authorization, since digests are handed out
// only through the authenticated modpack listing.
func (h *Handler) DownloadByHash(ctx *gin.Context) {
	digest := ctx.Param("hash")

	// Serve only content some record actually uploaded.
	if _, err := h.modpacks.GetUploadedByHash(ctx.Request.Context(), digest); err != nil {
		if errors.Is(err, modpack.ErrNotFound) {
			h.notFound(ctx)
			return
		}
		ctx.Error(fmt.Errorf("get by hash: %w", err))
		ctx.PureJSON(http.StatusInternalServerError, &api.Error{
			Code:    api.CodeInternalError,
			Message: "internal error",
		})
		return
	}

	path, err := h.blobs.Path(digest)
	if err != nil {
		h.notFound(ctx)
		return
	}
	if !h.blobs.Exists(digest) {
		// uploaded=true with a missing blob can happen if disk I/O failed
		// after the record committed. The client retries the upload.
		ctx.Error(fmt.Errorf("blob missing for digest %s", digest))
		h.notFound(ctx)
		return
	}

	ctx.Header("Content-Type", "application/octet-stream")
	ctx.File(path)
}

func (h *Handler) notFound(ctx *gin.Context) {
	ctx.PureJSON(http.StatusNotFound, &api.Error{
		Code:    api.CodeNotFound,
		Message: "not found",
	})
}
