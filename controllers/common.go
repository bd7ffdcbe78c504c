package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moaboard/moaboard/middleware"
)

// getUserID extracts the authenticated user ID set by the auth middleware.
func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// getNickname extracts the caller's nickname from the token claims.
func getNickname(ctx *gin.Context) string {
	v, ok := ctx.Get(middleware.ContextNicknameKey)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// isAdmin reports the token's admin hint. Privileged routes still pass
// through AdminRequired, which re-checks the user row.
func isAdmin(ctx *gin.Context) bool {
	v, ok := ctx.Get(middleware.ContextIsAdminKey)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// parsePagination normalizes page / page_size query values.
func parsePagination(pageStr, sizeStr string) (int, int) {
	page, pageSize := 1, 20
	if v := strings.TrimSpace(pageStr); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(sizeStr); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}
	return page, pageSize
}

// paginationMeta builds the uniform pagination block for list responses.
func paginationMeta(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}
