package api

import (
	"krishna_store/internal/domain"     // Domain models and errors
	"krishna_store/internal/middleware" // Authenticated caller
	"krishna_store/internal/service"    // Business operations
	"krishna_store/internal/utils"      // Response envelope
	"net/http"                          // HTTP status codes
	"strconv"                           // Path parameter parsing

	"github.com/gin-gonic/gin" // Gin web framework
)

// CreateSubadminRequest is the body of POST /settings/subadmins
type CreateSubadminRequest struct {
	Name  string `json:"name"`                            // Display name
	Phone string `json:"phone"`                           // Login phone, unique
	Email string `json:"email" binding:"omitempty,email"` // Optional, unique when set
}

// CreateSubadminHandler provisions a subadmin and triggers a login OTP
func CreateSubadminHandler(subadmins *service.SubadminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, role, _ := middleware.Actor(c)
		var req CreateSubadminRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, domain.NewError(domain.KindValidation, "Invalid request", err))
			return
		}
		created, err := subadmins.Create(c.Request.Context(), role, service.CreateSubadminInput{
			Name:  req.Name,
			Phone: req.Phone,
			Email: req.Email,
		})
		if err != nil {
			utils.Fail(c, err)
			return
		}
		if !utils.IsDebug() {
			created.OTP = "" // Codes only travel by SMS in production
		}
		utils.Success(c, http.StatusCreated, "Subadmin created successfully", created)
	}
}

// ListSubadminsHandler returns active subadmins, newest first
func ListSubadminsHandler(subadmins *service.SubadminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, role, _ := middleware.Actor(c)
		users, err := subadmins.List(c.Request.Context(), role)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Subadmins fetched successfully", users)
	}
}

// UpdateSubadminHandler changes name, email or isActive
func UpdateSubadminHandler(subadmins *service.SubadminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, role, _ := middleware.Actor(c)
		id, err := pathID(c, "id")
		if err != nil {
			utils.Fail(c, err)
			return
		}
		var req service.UpdateSubadminInput
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, domain.NewError(domain.KindValidation, "Invalid request", err))
			return
		}
		user, err := subadmins.Update(c.Request.Context(), role, id, req)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Subadmin updated successfully", user)
	}
}

// DeleteSubadminHandler deactivates a subadmin
func DeleteSubadminHandler(subadmins *service.SubadminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, role, _ := middleware.Actor(c)
		id, err := pathID(c, "id")
		if err != nil {
			utils.Fail(c, err)
			return
		}
		if err := subadmins.Deactivate(c.Request.Context(), role, id); err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Subadmin deleted successfully", nil)
	}
}

// GetShopInfoHandler returns the full shop record for staff
func GetShopInfoHandler(shop *service.ShopInfoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := shop.Get(c.Request.Context())
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Shop information fetched successfully", info)
	}
}

// UpdateShopInfoHandler merges the fields present in the body
func UpdateShopInfoHandler(shop *service.ShopInfoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.ShopInfoUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, domain.NewError(domain.KindValidation, "Invalid shop information", err))
			return
		}
		info, err := shop.Update(c.Request.Context(), &req)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Shop information updated successfully", info)
	}
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint, error) {
	return parseID(c.Param(name), name)
}

func parseID(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ValidationError("Invalid " + name)
	}
	return uint(id), nil
}
