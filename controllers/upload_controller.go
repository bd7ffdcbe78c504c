package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/moaboard/moaboard/config"
	"github.com/moaboard/moaboard/utils"
)

// UploadController stores post images on local disk under the configured
// upload directory and returns their public URLs.
type UploadController struct{}

// NewUploadController creates a new UploadController instance.
func NewUploadController() *UploadController {
	return &UploadController{}
}

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadImage accepts a single image under the 'file' form field, saves it
// under uploads/<year>/<month>/<uuid><ext> and returns its URL.
func (u *UploadController) UploadImage(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		file, header, err = ctx.Request.FormFile("image")
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40130, "no file uploaded")
			return
		}
	}
	defer file.Close()

	cfg := config.Get()
	maxSize := int64(cfg.UploadMaxSizeMB) * 1024 * 1024
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}
	if header.Size > 0 && header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40131,
			fmt.Sprintf("file size exceeds %dMB", maxSize/(1024*1024)))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		utils.Error(ctx, http.StatusBadRequest, 40132, "unsupported image type")
		return
	}

	now := time.Now()
	baseDir := filepath.Join(cfg.UploadDir, now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		utils.Internal(ctx, 50170, err, "failed to create upload directory")
		return
	}

	// Object names are random, the original filename never touches disk.
	name := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, name)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Internal(ctx, 50171, err, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dstPath)
		utils.Internal(ctx, 50172, err, "failed to write file")
		return
	}
	if written > maxSize {
		_ = out.Close()
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusBadRequest, 40131,
			fmt.Sprintf("file size exceeds %dMB", maxSize/(1024*1024)))
		return
	}

	url := fmt.Sprintf("/uploads/%s/%s/%s", now.Format("2006"), now.Format("01"), name)
	utils.Success(ctx, gin.H{
		"url":           url,
		"thumbnail_url": url,
		"size":          written,
	})
}
