package handler

import (
	"github.com/labstack/echo/v4"
)

// successResponse is the envelope for every successful API response.
type successResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, successResponse{Success: true, Data: data})
}

func respondPaged(c echo.Context, status int, data interface{}, page, limit int, total int64, pages int) error {
	return c.JSON(status, successResponse{
		Success: true,
		Data:    data,
		Pagination: &pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	})
}
