package modpack

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stopperw/modsync/internal/api"
	mp "github.com/stopperw/modsync/internal/server/modpack"
)

type uploadQuery struct {
	FilePath string `form:"file_path" binding:"required"`
}

// Upload handles POST /modpack/:modpack_id/upload?file_path=<path>. The
// body is a single multipart field with the raw file bytes. The server
// recomputes the digest itself; a client-supplied hash is never trusted
// for storage identity.
func (h *Handler) Upload(ctx *gin.Context) {
	modpackID := ctx.Param("modpack_id")

	var query uploadQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.Error(fmt.Errorf("bind upload query: %w", err))
		ctx.PureJSON(http.StatusBadRequest, &api.Error{
			Code:    api.CodeInvalidRequest,
			Message: err.Error(),
		})
		return
	}

	// The upload must target a path that went through filesync first.
	record, err := h.modpacks.GetFileByPath(ctx.Request.Context(), modpackID, query.FilePath)
	if err != nil {
		if errors.Is(err, mp.ErrNotFound) {
			ctx.PureJSON(http.StatusNotFound, &api.Error{
				Code:    api.CodeNotFound,
				Message: fmt.Sprintf("no file record for %q", query.FilePath),
			})
			return
		}
		h.internalError(ctx, fmt.Errorf("get file record: %w", err))
		return
	}

	reader, err := ctx.Request.MultipartReader()
	if err != nil {
		ctx.Error(fmt.Errorf("multipart reader: %w", err))
		ctx.PureJSON(http.StatusBadRequest, &api.Error{
			Code:    api.CodeInvalidRequest,
			Message: "expected multipart body",
		})
		return
	}
	part, err := reader.NextPart()
	if err != nil {
		ctx.Error(fmt.Errorf("multipart next part: %w", err))
		ctx.PureJSON(http.StatusBadRequest, &api.Error{
			Code:    api.CodeInvalidRequest,
			Message: "multipart body has no field",
		})
		return
	}
	defer part.Close()

	// Stream to a temp name while hashing, then decide whether the bytes
	// are already on disk.
	staged, err := h.blobs.Stage(part)
	if err != nil {
		ctx.Error(fmt.Errorf("stage upload: %w", err))
		ctx.PureJSON(http.StatusInternalServerError, &api.Error{
			Code:    api.CodeUploadFailed,
			Message: "failed to persist upload",
		})
		return
	}
	defer staged.Discard()

	digest := staged.Digest()
	action := api.UploadActionUploaded

	_, knownErr := h.modpacks.GetUploadedByHash(ctx.Request.Context(), digest)
	if knownErr != nil && !errors.Is(knownErr, mp.ErrNotFound) {
		h.internalError(ctx, fmt.Errorf("dedup lookup: %w", knownErr))
		return
	}
	if knownErr == nil && h.blobs.Exists(digest) {
		// Same bytes already committed under this digest; skip the write.
		action = api.UploadActionExists
	} else {
		if err := staged.Commit(); err != nil {
			ctx.Error(err)
			ctx.PureJSON(http.StatusInternalServerError, &api.Error{
				Code:    api.CodeUploadFailed,
				Message: "failed to persist upload",
			})
			return
		}
	}

	// Marks uploaded=true and bumps sync_version. There is no transaction
	// spanning this and the blob write; a crash in between is retried by
	// the client and converges because uploads are idempotent.
	if err := h.modpacks.SetUploaded(ctx.Request.Context(), record.ID, digest); err != nil {
		h.internalError(ctx, fmt.Errorf("set uploaded: %w", err))
		return
	}

	slog.Info("upload", "modpack", modpackID, "path", query.FilePath, "digest", digest, "size", staged.Size(), "action", action)

	ctx.PureJSON(http.StatusOK, &api.UploadResponse{
		Action: action,
		FileID: record.ID,
	})
}
