package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/emberhaus/internal/middleware"
	"github.com/emberhaus/internal/service"
	"github.com/gin-gonic/gin"
)

const maxListLimit = 500

// QueryParams are the only query parameters any handler reads.
var QueryParams = []string{"category", "page", "sort", "limit"}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// respondServiceError maps service sentinels onto status codes. Anything unexpected
// is attached to the context for the request logger and reported generically.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSlugTaken), errors.Is(err, service.ErrSectionTaken):
		respondError(c, http.StatusConflict, err.Error())
	case service.IsNotFound(err):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// listOptions reads the shared list query parameters. Drafts are included only for
// admin sessions.
func listOptions(c *gin.Context) service.ListOptions {
	opts := service.ListOptions{
		IncludeDrafts: middleware.IsAdmin(c),
		Category:      strings.TrimSpace(c.Query("category")),
		Page:          strings.TrimSpace(c.Query("page")),
		Sort:          strings.TrimSpace(c.Query("sort")),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			opts.Limit = min(limit, maxListLimit)
		}
	}
	return opts
}
