package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func JSON200(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   data,
	})
}

// JSON200Error returns a structured error inside a 200 response. Used for
// conditions like STORAGE_LIMIT_EXCEEDED where the request itself succeeded
// but the operation was refused; callers must check the error field.
func JSON200Error(c *gin.Context, code string, message string, details gin.H) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	for k, v := range details {
		body[k] = v
	}
	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"error":  body,
	})
}

func JSON400(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status": http.StatusBadRequest,
		"error":  message,
	})
}

func JSON401(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"status": http.StatusUnauthorized,
		"error":  message,
	})
}

func JSON403(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, gin.H{
		"status": http.StatusForbidden,
		"error":  message,
	})
}

func JSON404(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{
		"status": http.StatusNotFound,
		"error":  message,
	})
}

func JSON500(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"status": http.StatusInternalServerError,
		"error":  message,
	})
}
