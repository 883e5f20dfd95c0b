package cvs

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cvmanager-backend/internal/shared/server/respond"
)

// Handler exposes the CV endpoints over HTTP.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes mounts the CV endpoints on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cv", h.list)
	rg.POST("/cv", h.create)
	rg.GET("/cv/:id", h.get)
	rg.PUT("/cv/:id", h.update)
	rg.DELETE("/cv/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	aggs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list cvs", nil)
		return
	}

	out := make([]CVResponse, 0, len(aggs))
	for _, agg := range aggs {
		out = append(out, toResponse(agg))
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	agg, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "cv not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load cv", nil)
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(agg))
}

func (h *Handler) create(c *gin.Context) {
	var req CreateCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", validationDetails(err))
		return
	}

	agg, err := h.Svc.Create(c.Request.Context(), req.Name, req.personalInformation(), req.experiences())
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create cv", nil)
		return
	}

	c.Set("cvId", agg.CV.ID)
	c.Header("Location", fmt.Sprintf("/api/v1/cv/%d", agg.CV.ID))
	respond.JSON(c, http.StatusCreated, toResponse(agg))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", validationDetails(err))
		return
	}
	if req.ID != id {
		respond.Error(c, http.StatusBadRequest, "validation_error", "body id does not match path id", nil)
		return
	}

	c.Set("cvId", id)
	err := h.Svc.Update(c.Request.Context(), id, req.Name, req.personalInformation(), req.experiences())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "cv not found", nil)
			return
		}
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update cv", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"message": "Updated"})
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	c.Set("cvId", id)
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "cv not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete cv", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"message": "Deleted"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}
