package internal

import (
	"io"

	"github.com/gin-gonic/gin"
)

// respondErr maps any error to the portal's uniform {"error": msg} surface.
func respondErr(c *gin.Context, err error) {
	c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
}

// formFile opens an uploaded file by field name, returning nil when the
// field is absent.
func formFile(c *gin.Context, field string) (io.ReadCloser, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	return f, fh.Filename, nil
}
