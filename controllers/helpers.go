package controllers

import (
	"strconv"

	"littlelemon/pkg/apperr"
	"littlelemon/pkg/paginate"
	"littlelemon/pkg/validate"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the body and applies the binding tags on dst.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return validate.Error(err)
	}
	return nil
}

// paramID reads a positive numeric path parameter. Anything else cannot match a row.
func paramID(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.NotFound("not found")
	}
	return uint(n), nil
}

func pageParams(c *gin.Context) paginate.Params {
	return paginate.Parse(c.Query("page"), c.Query("page_size"))
}
