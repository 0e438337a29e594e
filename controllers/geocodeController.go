package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"civiclens-be/services"
)

type GeocodeController struct {
	geocoder *services.Geocoder
}

func NewGeocodeController(geocoder *services.Geocoder) *GeocodeController {
	return &GeocodeController{geocoder: geocoder}
}

// ReverseGeocode resolves ?lat=&lng= to an address, falling back to the coordinates.
func (ctl *GeocodeController) ReverseGeocode(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)

	fields := map[string][]string{}
	if latErr != nil || lat < -90 || lat > 90 {
		fields["lat"] = []string{"Invalid latitude."}
	}
	if lngErr != nil || lng < -180 || lng > 180 {
		fields["lng"] = []string{"Invalid longitude."}
	}
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates", "errors": fields})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{"address": ctl.geocoder.Reverse(ctx, lat, lng)})
}
