package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/intervault/apiserver/internal/services"
	"github.com/intervault/apiserver/internal/store"
	"github.com/intervault/apiserver/types"
)

// VaultHandler provides HTTP handlers for vault entries and tags. All
// routes require authentication; reads are scoped to the caller.
type VaultHandler struct {
	vaultService *services.VaultService
	logger       *slog.Logger
}

func NewVaultHandler(vaultService *services.VaultService, logger *slog.Logger) *VaultHandler {
	return &VaultHandler{vaultService: vaultService, logger: logger}
}

// VaultRouter registers vault routes on the given (already guarded) router.
func VaultRouter(r chi.Router, handler *VaultHandler) {
	r.Post("/add", handler.AddEntry)
	r.Get("/search", handler.Search)
	r.Get("/all", handler.ListAll)
	r.Post("/tags", handler.CreateTag)
	r.Get("/tags", handler.ListTags)
}

type AddEntryRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
	InfoB    string `json:"info_b,omitempty"`
	TagIDs   []int  `json:"tag_ids,omitempty"`
}

type AddEntryResponse struct {
	Status string `json:"status"`
	ID     int    `json:"id"`
}

func (h *VaultHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	metadata := types.EntryMetadata{
		Answer:   req.Answer,
		Category: req.Category,
		InfoB:    req.InfoB,
	}
	entryID, err := h.vaultService.Add(r.Context(), userID, req.Question, metadata, req.TagIDs)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuestionRequired), errors.Is(err, services.ErrAnswerRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("add entry failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, AddEntryResponse{Status: "created", ID: entryID})
}

func (h *VaultHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	entries, err := h.vaultService.Search(r.Context(), userID, query)
	if err != nil {
		h.logger.Error("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// EntryListResponse is the paginated list response payload.
type EntryListResponse struct {
	Items  []types.VaultEntry `json:"items"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
	Total  int                `json:"total"`
}

func (h *VaultHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset, err := parseLimitOffset(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, total, err := h.vaultService.List(r.Context(), userID, offset, limit)
	if err != nil {
		h.logger.Error("list entries failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, EntryListResponse{
		Items:  entries,
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}

type CreateTagRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (h *VaultHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	tag, err := h.vaultService.CreateTag(r.Context(), req.Name, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTagNameRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrDuplicateTag):
			writeError(w, http.StatusConflict, "tag already exists")
		default:
			h.logger.Error("create tag failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, tag)
}

func (h *VaultHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.vaultService.ListTags(r.Context())
	if err != nil {
		h.logger.Error("list tags failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tags)
}
