package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"cruisebooking/internal/domain/models"
	"cruisebooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ListItineraries answers GET /api/itineraries with optional filters.
// places_visited may repeat or hold a comma separated list.
func ListItineraries(c *gin.Context) {
	f := models.ItineraryFilter{
		Origin:      strings.TrimSpace(c.Query("origin")),
		Destination: strings.TrimSpace(c.Query("destination")),
		Date:        strings.TrimSpace(c.Query("date")),
		Continent:   strings.TrimSpace(c.Query("continent")),
	}
	if raw := strings.TrimSpace(c.Query("min_cabins")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "invalid_min_cabins", "min_cabins must be a non-negative integer", nil)
			return
		}
		f.MinCabins = n
	}
	for _, v := range c.QueryArray("places_visited") {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				f.PlacesVisited = append(f.PlacesVisited, p)
			}
		}
	}

	svc := current().Itineraries
	svc.RequestID = middleware.GetRequestID(c)
	list, err := svc.List(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func GetItinerary(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	svc := current().Itineraries
	svc.RequestID = middleware.GetRequestID(c)
	it, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// GetPromotionSuggestion previews the default promotional cabin price.
func GetPromotionSuggestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	svc := current().Promotions
	svc.RequestID = middleware.GetRequestID(c)
	s, err := svc.Suggest(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
