package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tailorbook-api/pkg/apperror"
	"github.com/sangkips/tailorbook-api/pkg/pagination"
)

// parseNumber reads a positive bill or receipt number path parameter.
// On failure it writes a 400 and returns false.
func parseNumber(c *gin.Context, param string) (int64, bool) {
	n, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || n <= 0 {
		response.BadRequest(c, "Invalid "+strings.ReplaceAll(param, "_", " "))
		return 0, false
	}
	return n, true
}

// parseID reads a uuid path parameter
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page and per_page from the query string
func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	}
	params.Validate()
	return params
}

// bindJSON binds the request body. Validation failures become a 422 listing
// each field; malformed JSON becomes a 400.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fieldErrors := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fe.Namespace(),
				Message: validationMessage(fe),
			})
		}
		response.ValidationError(c, fieldErrors)
		return false
	}

	response.BadRequest(c, "Invalid request: "+err.Error())
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
