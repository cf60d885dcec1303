package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes the APIResponse envelope.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

// ListResponse writes a list with its total.
func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return DataResponse(c, http.StatusOK, &ListDataResponse{
		Rows:  rows,
		Total: total,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// DetailErrorResponse writes {"detail": detail} with the given status.
func DetailErrorResponse(c echo.Context, status int, detail interface{}) error {
	return c.JSON(status, DetailResponse{Detail: detail})
}

// ValidationErrorResponse writes 422 with the list of failed fields.
func ValidationErrorResponse(c echo.Context, errs []ValidationError) error {
	return DetailErrorResponse(c, http.StatusUnprocessableEntity, errs)
}

// InternalServerErrorResponse writes a generic 500.
func InternalServerErrorResponse(c echo.Context) error {
	return DetailErrorResponse(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// AppErrorResponse writes an AppError; anything else becomes a generic 500.
// 422 errors keep the list shape of validation failures.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return InternalServerErrorResponse(c)
	}
	if appErr.Status == http.StatusUnprocessableEntity {
		return ValidationErrorResponse(c, []ValidationError{{
			Code:    appErr.Code,
			Field:   appErr.Field,
			Message: appErr.Message,
			Params:  appErr.Params,
		}})
	}
	if appErr.Status >= http.StatusInternalServerError {
		return InternalServerErrorResponse(c)
	}
	return DetailErrorResponse(c, appErr.Status, appErr.Message)
}
