package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/justsurfingit/placement-tracker/internal/apperrors"
	"github.com/rs/zerolog"
)

func statusFor(errType apperrors.ErrorType) int {
	switch errType {
	case apperrors.ErrTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrTypeInvalidCriteria, apperrors.ErrTypeInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrTypeInvalidTransition:
		return http.StatusUnprocessableEntity
	case apperrors.ErrTypeConflict:
		return http.StatusConflict
	case apperrors.ErrTypeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body for err. Internal failures are logged
// with their stack and reported without detail.
func respondError(c *gin.Context, logger zerolog.Logger, err error) {
	errType := apperrors.TypeOf(err)
	status := statusFor(errType)

	message := "internal server error"
	var de *apperrors.DomainError
	isDomain := errors.As(err, &de)
	if isDomain && status != http.StatusInternalServerError {
		message = de.Message
	}
	if status == http.StatusInternalServerError {
		event := logger.Error().Err(err).Str("path", c.FullPath())
		if isDomain && len(de.Stack) > 0 {
			event = event.Bytes("stack", de.Stack)
		}
		event.Msg("request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": message, "type": string(errType)})
}

// bindError classifies a body binding failure. Problems inside the
// eligibility block are criteria errors, everything else is bad input.
func bindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if strings.HasPrefix(typeErr.Field, "eligibility") {
			return apperrors.InvalidCriteria("eligibility field "+typeErr.Field+" has the wrong type", err)
		}
		return apperrors.InvalidInput("field "+typeErr.Field+" has the wrong type", err)
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			if strings.Contains(fe.StructNamespace(), ".Eligibility.") {
				return apperrors.InvalidCriteria("eligibility field "+fe.Field()+" is "+fe.Tag(), err)
			}
		}
		return apperrors.InvalidInput("invalid request body: "+validationErrs.Error(), err)
	}
	return apperrors.InvalidInput("invalid JSON format: "+err.Error(), err)
}

func parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.InvalidInput("invalid "+name+": "+raw, err)
	}
	return uint(id), nil
}
