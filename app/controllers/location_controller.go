package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salary-parser/app/requests"
	"github.com/salary-parser/app/responses"
	"github.com/salary-parser/internal/location"
)

// LocationController serves city suggestions and place translations.
type LocationController struct {
	resolver *location.Resolver
}

func NewLocationController(resolver *location.Resolver) *LocationController {
	return &LocationController{resolver: resolver}
}

// Suggest ranks cities for a partial query.
func (lc *LocationController) Suggest(c *gin.Context) {
	var q requests.SuggestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidRequest(c, err)
		return
	}
	if q.MinScore < 0 || q.MinScore > 1 {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "min_score must be between 0 and 1",
		})
		return
	}
	c.JSON(http.StatusOK, lc.resolver.Suggest(q.Q, q.Country, q.Locale, q.MinScore))
}

// Translate renders a place name in the requested locale.
func (lc *LocationController) Translate(c *gin.Context) {
	var q requests.TranslateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.TranslateResponse{
		Name:       q.Name,
		Locale:     q.Locale,
		Translated: lc.resolver.Translate(q.Name, q.Locale),
	})
}
