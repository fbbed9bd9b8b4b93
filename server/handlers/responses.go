package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"orgaccount-backend/services/account"
	"orgaccount-backend/shared/database/models"
)

// serializeUser renders an account for API responses. The password digest
// never leaves the model (json:"-"); `active` is derived from status for
// clients that only care about the boolean.
func serializeUser(user *models.User) gin.H {
	return gin.H{
		"id":              user.ID,
		"email":           user.Email,
		"first_name":      user.FirstName,
		"last_name":       user.LastName,
		"gender":          user.Gender,
		"avatar":          user.Avatar,
		"organization_id": user.OrganizationID,
		"role":            user.Role,
		"status":          user.Status,
		"active":          user.IsActive(),
		"last_login":      user.LastLogin,
		"created_at":      user.CreatedAt,
		"updated_at":      user.UpdatedAt,
	}
}

// bindingErrors converts validator failures into a field-keyed message map.
func bindingErrors(err error) gin.H {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return gin.H{"detail": "Invalid request body."}
	}

	fields := gin.H{}
	for _, fieldErr := range validationErrs {
		name := toSnakeCase(fieldErr.Field())
		fields[name] = []string{messageForTag(fieldErr)}
	}
	return fields
}

func messageForTag(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return "Select a valid choice."
	default:
		return "This value is invalid."
	}
}

func toSnakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// writeAccountError maps account service errors onto the HTTP surface with
// field-keyed bodies where a specific input is at fault.
func writeAccountError(c *gin.Context, err error) {
	var weak *account.WeakPasswordError

	switch {
	case errors.As(err, &weak):
		c.JSON(http.StatusBadRequest, gin.H{"password": weak.Violations})
	case errors.Is(err, account.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"email": []string{account.ErrDuplicateEmail.Error()}})
	case errors.Is(err, account.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"email": []string{"Enter a valid email address."}})
	case errors.Is(err, account.ErrInvalidGender):
		c.JSON(http.StatusBadRequest, gin.H{"gender": []string{account.ErrInvalidGender.Error()}})
	case errors.Is(err, account.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"password": []string{account.ErrPasswordMismatch.Error()}})
	case errors.Is(err, account.ErrOldPasswordMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"old_password": []string{account.ErrOldPasswordMismatch.Error()}})
	case errors.Is(err, account.ErrUnknownOrganization):
		c.JSON(http.StatusBadRequest, gin.H{"organization": []string{account.ErrUnknownOrganization.Error()}})
	case errors.Is(err, account.ErrUnknownAccount):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
	}
}
