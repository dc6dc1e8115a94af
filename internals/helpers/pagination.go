package helper

import "github.com/gofiber/fiber/v2"

type Pagination struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

func ParsePagination(c *fiber.Ctx) Pagination {
	p := Pagination{Page: c.QueryInt("page", 1), PageSize: c.QueryInt("page_size", 50)}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 200 {
		p.PageSize = 50
	}
	return p
}

func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }
func (p Pagination) Limit() int  { return p.PageSize }
