package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"orgaccount-backend/server/middleware"
	"orgaccount-backend/services/account"
	"orgaccount-backend/shared/storage"
	"orgaccount-backend/shared/utils/query"
)

// UserHandler serves profile self-service and the admin user directory.
type UserHandler struct {
	accounts     AccountDirectory
	storage      storage.ObjectStorage
	allowedTypes []string
}

func NewUserHandler(accounts AccountDirectory, objectStorage storage.ObjectStorage, allowedTypes []string) *UserHandler {
	return &UserHandler{accounts: accounts, storage: objectStorage, allowedTypes: allowedTypes}
}

// UpdateProfileRequest is used for full profile replacement (PUT).
// Passwords never travel through profile updates.
type UpdateProfileRequest struct {
	Email     string  `json:"email" binding:"required"`
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Gender    string  `json:"gender" binding:"required"`
	Password  *string `json:"password"`
}

// PatchProfileRequest is used for partial profile updates (PATCH).
type PatchProfileRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Gender    *string `json:"gender"`
	Password  *string `json:"password"`
}

// ChangePasswordRequest carries a password change.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// GET /users/me
// @Summary Get own profile
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{} "Account"
// @Failure 403 {object} map[string]string "Not authenticated or not activated"
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, serializeUser(middleware.CurrentUser(c)))
}

// PUT /users/me
// @Summary Replace own profile
// @Description Updates all profile fields. A password key in the body is rejected.
// @Tags users
// @Accept json
// @Produce json
// @Param profile body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} map[string]interface{} "Updated account"
// @Failure 400 {object} map[string]interface{} "Validation errors"
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}
	if req.Password != nil {
		c.JSON(http.StatusBadRequest, gin.H{"password": []string{"Password cannot be updated here. Use the change password endpoint."}})
		return
	}

	h.applyUpdate(c, middleware.CurrentUser(c).ID, account.UpdateParams{
		Email:     &req.Email,
		FirstName: &req.FirstName,
		LastName:  &req.LastName,
		Gender:    &req.Gender,
	})
}

// PATCH /users/me
// @Summary Update own profile
// @Description Updates only the provided profile fields. A password key in the body is rejected.
// @Tags users
// @Accept json
// @Produce json
// @Param profile body PatchProfileRequest true "Profile fields"
// @Success 200 {object} map[string]interface{} "Updated account"
// @Failure 400 {object} map[string]interface{} "Validation errors"
// @Router /users/me [patch]
func (h *UserHandler) PatchMe(c *gin.Context) {
	var req PatchProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}
	if req.Password != nil {
		c.JSON(http.StatusBadRequest, gin.H{"password": []string{"Password cannot be updated here. Use the change password endpoint."}})
		return
	}

	h.applyUpdate(c, middleware.CurrentUser(c).ID, account.UpdateParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
	})
}

// DELETE /users/me
// @Summary Deactivate own account
// @Description Soft-deletes the account. The bearer token stops working immediately.
// @Tags users
// @Success 204 "Deactivated"
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.accounts.Deactivate(c.Request.Context(), middleware.CurrentUser(c).ID); err != nil {
		writeAccountError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /users/change_password
// @Summary Change own password
// @Tags users
// @Accept json
// @Produce json
// @Param passwords body ChangePasswordRequest true "Old and new passwords"
// @Success 200 {object} map[string]string "Password updated"
// @Failure 400 {object} map[string]interface{} "Validation errors"
// @Router /users/change_password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.accounts.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		writeAccountError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "Password updated successfully."})
}

// POST /users/me/avatar
// @Summary Upload an avatar image
// @Description Stores the image in object storage and saves its URI on the account
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} map[string]interface{} "Updated account"
// @Failure 400 {object} map[string]interface{} "Missing or unsupported file"
// @Router /users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "File storage is not available."})
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"avatar": []string{"This field is required."}})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !h.extensionAllowed(ext) {
		c.JSON(http.StatusBadRequest, gin.H{"avatar": []string{fmt.Sprintf("Unsupported file type %s. Allowed: %s", ext, strings.Join(h.allowedTypes, ", "))}})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"avatar": []string{"Could not read the uploaded file."}})
		return
	}
	defer file.Close()

	user := middleware.CurrentUser(c)
	objectName := fmt.Sprintf("avatars/%s/%s%s", user.ID, uuid.New(), ext)
	contentType := fileHeader.Header.Get("Content-Type")

	uri, err := h.storage.Store(c.Request.Context(), objectName, file, fileHeader.Size, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not store the uploaded file."})
		return
	}

	updated, err := h.accounts.SetAvatar(c.Request.Context(), user.ID, uri)
	if err != nil {
		writeAccountError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializeUser(updated))
}

func (h *UserHandler) extensionAllowed(ext string) bool {
	for _, allowed := range h.allowedTypes {
		if ext == strings.TrimSpace(allowed) {
			return true
		}
	}
	return false
}

// GET /users
// @Summary List accounts (admin)
// @Description Accounts in creation order with pagination, search and filters
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Search in name and email"
// @Success 200 {object} map[string]interface{} "Accounts with pagination metadata"
// @Failure 403 {object} map[string]string "Not an admin"
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	params := query.ParseQueryParams(c)

	users, total, err := h.accounts.List(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
		return
	}

	serialized := make([]gin.H, 0, len(users))
	for i := range users {
		serialized = append(serialized, serializeUser(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      serialized,
		"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
	})
}

// GET /users/:id
// @Summary Get an account (admin)
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{} "Account"
// @Failure 404 {object} map[string]string "Unknown account"
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	user, err := h.accounts.Get(c.Request.Context(), id)
	if err != nil {
		writeAccountError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializeUser(user))
}

// PUT /users/:id
// @Summary Replace an account's profile (admin)
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param profile body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} map[string]interface{} "Updated account"
// @Failure 404 {object} map[string]string "Unknown account"
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}
	if req.Password != nil {
		c.JSON(http.StatusBadRequest, gin.H{"password": []string{"Password cannot be updated here. Use the change password endpoint."}})
		return
	}

	h.applyUpdate(c, id, account.UpdateParams{
		Email:     &req.Email,
		FirstName: &req.FirstName,
		LastName:  &req.LastName,
		Gender:    &req.Gender,
	})
}

// PATCH /users/:id
// @Summary Update an account's profile (admin)
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param profile body PatchProfileRequest true "Profile fields"
// @Success 200 {object} map[string]interface{} "Updated account"
// @Failure 404 {object} map[string]string "Unknown account"
// @Router /users/{id} [patch]
func (h *UserHandler) Patch(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req PatchProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}
	if req.Password != nil {
		c.JSON(http.StatusBadRequest, gin.H{"password": []string{"Password cannot be updated here. Use the change password endpoint."}})
		return
	}

	h.applyUpdate(c, id, account.UpdateParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
	})
}

// DELETE /users/:id
// @Summary Deactivate an account (admin)
// @Description Soft delete. Repeating the call on a deleted account still succeeds.
// @Tags users
// @Param id path string true "User ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} map[string]string "Unknown account"
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.accounts.Deactivate(c.Request.Context(), id); err != nil {
		writeAccountError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) applyUpdate(c *gin.Context, id uuid.UUID, params account.UpdateParams) {
	user, err := h.accounts.Update(c.Request.Context(), id, params)
	if err != nil {
		writeAccountError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializeUser(user))
}

func (h *UserHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return uuid.Nil, false
	}
	return id, true
}
