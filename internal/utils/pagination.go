package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page holds validated pagination parameters
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

// Offset is the number of rows to skip
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages for a given row count
func (p Page) TotalPages(total int64) int {
	return (int(total) + p.Size - 1) / p.Size
}

// ParsePage reads page and page_size from the query string; page_size is capped at 100
func ParsePage(c *gin.Context) Page {
	page := Page{Number: 1, Size: 20} // Defaults
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page.Number = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			page.Size = v
		}
	}
	return page
}
