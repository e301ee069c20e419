package modpack

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stopperw/modsync/internal/api"
	"github.com/stopperw/modsync/internal/server/blob"
	"github.com/stopperw/modsync/internal/server/modpack"
)

// Store is the slice of the modpack service the handlers call. Satisfied
// by *modpack.Service.
type Store interface {
	CreateModpack(ctx context.Context, req *api.ModpackCreateRequest) (*modpack.Modpack, error)
	GetModpack(ctx context.Context, id string) (*modpack.Modpack, error)
	ListFiles(ctx context.Context, modpackID string) ([]*modpack.FileRecord, error)
	DeleteModpack(ctx context.Context, id string) error
	FileSync(ctx context.Context, modpackID, path string, state api.FileState, hash *string) (*modpack.FileRecord, error)
	GetFileByPath(ctx context.Context, modpackID, path string) (*modpack.FileRecord, error)
	GetUploadedByHash(ctx context.Context, digest string) (*modpack.FileRecord, error)
	SetUploaded(ctx context.Context, fileID, digest string) error
}

type Handler struct {
	modpacks Store
	blobs    *blob.Store
}

func New(modpacks Store, blobs *blob.Store) *Handler {
	return &Handler{modpacks: modpacks, blobs: blobs}
}

// Create handles POST /modpack/create.
func (h *Handler) Create(ctx *gin.Context) {
	var req api.ModpackCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(fmt.Errorf("bind modpack create: %w", err))
		ctx.PureJSON(http.StatusBadRequest, &api.Error{
			Code:    api.CodeInvalidRequest,
			Message: err.Error(),
		})
		return
	}

	mp, err := h.modpacks.CreateModpack(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, modpack.ErrAlreadyExists) {
			ctx.PureJSON(http.StatusBadRequest, &api.Error{
				Code:    api.CodeAlreadyExists,
				Message: fmt.Sprintf("modpack %q already exists", req.Name),
			})
			return
		}
		h.internalError(ctx, fmt.Errorf("create modpack: %w", err))
		return
	}

	ctx.PureJSON(http.StatusOK, &api.ModpackCreateResponse{ModpackID: mp.ID})
}

// Get handles GET /modpack/:modpack_id. The response is the authoritative
// snapshot clients reconcile against.
func (h *Handler) Get(ctx *gin.Context) {
	modpackID := ctx.Param("modpack_id")

	mp, err := h.modpacks.GetModpack(ctx.Request.Context(), modpackID)
	if err != nil {
		h.notFoundOrInternal(ctx, err)
		return
	}

	records, err := h.modpacks.ListFiles(ctx.Request.Context(), mp.ID)
	if err != nil {
		h.internalError(ctx, fmt.Errorf("list files: %w", err))
		return
	}

	files := make([]api.File, 0, len(records))
	for _, record := range records {
		files = append(files, record.ToAPI())
	}

	ctx.PureJSON(http.StatusOK, &api.ModpackResponse{
		Modpack: mp.ToAPI(),
		Files:   files,
	})
}

// Delete handles POST /modpack/:modpack_id/delete. File records cascade;
// blob bytes are left alone.
func (h *Handler) Delete(ctx *gin.Context) {
	modpackID := ctx.Param("modpack_id")

	if err := h.modpacks.DeleteModpack(ctx.Request.Context(), modpackID); err != nil {
		h.notFoundOrInternal(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, &api.DeleteResponse{Success: true})
}

// FileSync handles POST /modpack/:modpack_id/filesync. An idempotent
// metadata upsert; it never bumps sync_version.
func (h *Handler) FileSync(ctx *gin.Context) {
	modpackID := ctx.Param("modpack_id")

	var req api.FileSyncRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(fmt.Errorf("bind filesync: %w", err))
		ctx.PureJSON(http.StatusBadRequest, &api.Error{
			Code:    api.CodeInvalidRequest,
			Message: err.Error(),
		})
		return
	}
	if !req.State.Valid() {
		ctx.PureJSON(http.StatusBadRequest, &api.Error{
			Code:    api.CodeInvalidRequest,
			Message: fmt.Sprintf("invalid state %q", req.State),
		})
		return
	}

	if _, err := h.modpacks.FileSync(ctx.Request.Context(), modpackID, req.Path, req.State, req.Hash); err != nil {
		h.notFoundOrInternal(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, &api.FileSyncResponse{})
}

func (h *Handler) internalError(ctx *gin.Context, err error) {
	ctx.Error(err)
	ctx.PureJSON(http.StatusInternalServerError, &api.Error{
		Code:    api.CodeInternalError,
		Message: "internal error",
	})
}

func (h *Handler) notFoundOrInternal(ctx *gin.Context, err error) {
	if errors.Is(err, modpack.ErrNotFound) {
		ctx.PureJSON(http.StatusNotFound, &api.Error{
			Code:    api.CodeNotFound,
			Message: "not found",
		})
		return
	}
	h.internalError(ctx, err)
}
