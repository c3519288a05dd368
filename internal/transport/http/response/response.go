package response

import "github.com/gin-gonic/gin"

// Problem is the error body for non-streaming endpoints: the raw error detail
// plus the HTTP status it rode in on.
type Problem struct {
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func Error(c *gin.Context, httpStatus int, detail string) {
	c.JSON(httpStatus, Problem{
		Detail: detail,
		Status: httpStatus,
	})
}
