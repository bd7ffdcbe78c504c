package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/moaboard/moaboard/models"
	"github.com/moaboard/moaboard/utils"
)

// CategoryController manages the board's categories. Listing is public;
// everything else is admin only.
type CategoryController struct {
	db *gorm.DB
}

// NewCategoryController creates a new CategoryController instance.
func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{db: db}
}

// ListCategories returns all categories in display order, pinned first.
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	var categories []models.Category
	if err := c.db.Order("is_pinned DESC, sort_order ASC, id ASC").Find(&categories).Error; err != nil {
		utils.Internal(ctx, 50140, err, "failed to list categories")
		return
	}
	utils.Success(ctx, gin.H{"items": categories})
}

// CreateCategory adds a category at the end of the current order.
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40100, "name is required")
		return
	}

	name := utils.SanitizePlain(req.Name)
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40101, "name cannot be empty")
		return
	}

	var count int64
	if err := c.db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		utils.Internal(ctx, 50141, err, "failed to check category")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40930, "category already exists")
		return
	}

	var maxOrder int
	_ = c.db.Model(&models.Category{}).Select("COALESCE(MAX(sort_order), 0)").Scan(&maxOrder).Error

	category := models.Category{Name: name, Order: maxOrder + 1}
	if err := c.db.Create(&category).Error; err != nil {
		utils.Internal(ctx, 50142, err, "failed to create category")
		return
	}

	utils.Success(ctx, gin.H{"category": category})
}

// UpdateCategory renames a category or flips its pin flag. Renaming rewrites
// the denormalized category name on all posts in the same transaction.
func (c *CategoryController) UpdateCategory(ctx *gin.Context) {
	var req struct {
		Name     *string `json:"name"`
		IsPinned *bool   `json:"is_pinned"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40102, "invalid request payload")
		return
	}

	var category models.Category
	if err := c.db.First(&category, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40480, "category not found")
			return
		}
		utils.Internal(ctx, 50143, err, "failed to load category")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if req.Name != nil {
			name := utils.SanitizePlain(*req.Name)
			if name == "" {
				return errors.New("name cannot be empty")
			}
			if name != category.Name {
				if err := tx.Model(&models.Post{}).Where("category = ?", category.Name).
					Update("category", name).Error; err != nil {
					return err
				}
				category.Name = name
			}
		}
		if req.IsPinned != nil {
			category.IsPinned = *req.IsPinned
		}
		return tx.Save(&category).Error
	})
	if err != nil {
		utils.Internal(ctx, 50144, err, "failed to update category")
		return
	}

	utils.CacheDropPrefix("cache:posts:list:")
	utils.Success(ctx, gin.H{"category": category})
}

// DeleteCategory removes a category and moves its posts to the default one.
// The default category itself cannot be deleted.
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	var category models.Category
	if err := c.db.First(&category, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40481, "category not found")
			return
		}
		utils.Internal(ctx, 50145, err, "failed to load category")
		return
	}

	if category.IsDefault {
		utils.Error(ctx, http.StatusBadRequest, 40103, "the default category cannot be deleted")
		return
	}

	var fallback models.Category
	if err := c.db.Where("is_default = ?", true).First(&fallback).Error; err != nil {
		utils.Internal(ctx, 50146, err, "no default category configured")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("category = ?", category.Name).
			Update("category", fallback.Name)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			if err := tx.Model(&models.Category{}).Where("id = ?", fallback.ID).
				UpdateColumn("post_count", gorm.Expr("post_count + ?", res.RowsAffected)).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		utils.Internal(ctx, 50147, err, "failed to delete category")
		return
	}

	utils.CacheDropPrefix("cache:posts:list:")
	utils.Success(ctx, gin.H{"message": "category deleted"})
}

// ReorderCategories applies a full ordering, given as category IDs in the
// desired display order. Missing IDs keep their old position values.
func (c *CategoryController) ReorderCategories(ctx *gin.Context) {
	var req struct {
		IDs []uint `json:"ids" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40104, "ids are required")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range req.IDs {
			if err := tx.Model(&models.Category{}).Where("id = ?", id).
				Update("sort_order", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.Internal(ctx, 50148, err, "failed to reorder categories")
		return
	}

	utils.Success(ctx, gin.H{"message": "order updated"})
}
