package server

import (
	"net/http"
	"os"
	"strings"

	countrydomain "github.com/countrypulse/countrypulse/internal/country/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) RefreshCountries(c *gin.Context) {
	result, err := s.refreshSvc.Refresh(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Countries refreshed successfully",
		"total_countries": result.TotalCountries,
	})
}

func (s *Server) ListCountries(c *gin.Context) {
	var query struct {
		Region   string `form:"region"`
		Currency string `form:"currency"`
		Sort     string `form:"sort"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, countrydomain.ErrInvalidSort)
		return
	}

	countries, err := s.countrySvc.List(c.Request.Context(), countrydomain.ListRequest{
		Region:   strings.TrimSpace(query.Region),
		Currency: strings.TrimSpace(query.Currency),
		Sort:     strings.TrimSpace(query.Sort),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, countries)
}

func (s *Server) GetCountryByName(c *gin.Context) {
	country, err := s.countrySvc.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, country)
}

func (s *Server) DeleteCountry(c *gin.Context) {
	if err := s.countrySvc.Delete(c.Request.Context(), c.Param("name")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Country deleted successfully"})
}

func (s *Server) GetStatus(c *gin.Context) {
	metadata, err := s.countrySvc.Status(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_countries":   metadata.TotalCountries,
		"last_refreshed_at": metadata.LastRefreshedAt,
	})
}

func (s *Server) GetImage(c *gin.Context) {
	path := s.generator.ArtifactPath()
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Summary image not found"})
		return
	}

	c.Header("Content-Type", "image/png")
	c.File(path)
}
