package delivery

import (
	"context"
	"errors"
	"fmt"

	"currycrave/internal/delivery"
	"currycrave/internal/responses"
	"currycrave/internal/structs"
	"currycrave/pkg/logger"
	"currycrave/pkg/reply"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cast"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	Module = fx.Provide(New)
)

func init() {
	binding.EnableDecoderDisallowUnknownFields = true
}

type (
	Handler interface {
		ValidatePincode(c *gin.Context)
		GetPincode(c *gin.Context)
		GetSettings(c *gin.Context)

		AddServicablePincode(c *gin.Context)
		RemoveServicablePincode(c *gin.Context)
		UpdateAreaSettings(c *gin.Context)
		GetPincodesInRadius(c *gin.Context)
		ScanNearbyPincodes(c *gin.Context)

		SetRestaurantLocations(c *gin.Context)
		AddRestaurantLocation(c *gin.Context)
		RemoveRestaurantLocation(c *gin.Context)
		ToggleRestaurantLocation(c *gin.Context)
	}

	Params struct {
		fx.In
		Logger          logger.Logger
		DeliveryService delivery.Service
	}

	handler struct {
		logger          logger.Logger
		deliveryService delivery.Service
	}
)

func New(p Params) Handler {
	return &handler{
		logger:          p.Logger,
		deliveryService: p.DeliveryService,
	}
}

func (h *handler) ValidatePincode(c *gin.Context) {
	var (
		response structs.Response
		request  structs.ValidatePincodeRequest
		ctx      = c.Request.Context()
	)
	defer func() { reply.Json(c.Writer, response.Code, &response) }()

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.InvalidPincode
		return
	}

	result, err := h.deliveryService.CheckEligibility(ctx, request.Pincode)
	if err != nil {
		response = h.failure(ctx, "deliveryService.CheckEligibility", err)
		return
	}

	response = responses.Success
	response.Message = result.Message
	response.Payload = result
}

func (h *handler) GetPincode(c *gin.Context) {
	var (
		response structs.Response
		ctx      = c.Request.Context()
	)
	defer func() { reply.Json(c.Writer, response.Code, &response) }()

	rec, err := h.deliveryService.LookupPincode(ctx, c.Param("pincode"))
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			response = responses.PincodeNotFound
			return
		}
		response = h.failure(ctx, "deliveryService.LookupPincode", err)
		return
	}

	response = responses.Success
	response.Payload = rec
}

// GetSettings is public and only exposes active servicable pincodes.
func (h *handler) GetSettings(c *gin.Context) {
	var (
		response structs.Response
		ctx      = c.Request.Context()
	)
	defer func() { reply.Json(c.Writer, response.Code, &response) }()

	settings, err := h.deliveryService.GetSettings(ctx)
	if err != nil {
		response = h.failure(ctx, "deliveryService.GetSettings", err)
		return
	}
	settings.ServicablePincodes = settings.ActiveServicablePincodes()

	response = responses.Success
	response.Payload = settings
}

func (h *handler) AddServicablePincode(c *gin.Context) {
	var (
		response structs.Response
		request  structs.AddServicablePincodeRequest
		ctx      = c.Request.Context()
	)
	defer func() { reply.Json(c.Writer, response.Code, &response) }()

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	settings, err := h.deliveryService.AddServicablePincode(ctx, request)
	if err != nil {
		response = h.failure(ctx, "deliveryService.AddServicablePincode", err)
		return
	}

	response = responses.Success
	response.Message = fmt.Sprintf("Pincode %s added to servicable areas", request.Pincode)
	response.Payload = settings
}

func (h *handler) RemoveServicablePincode(c *gin.Context) {
	var (
		response structs.Response
		code     = c.Param("pincode")
		ctx      = c.Request.Context()
	)
	defer func() { reply.Json(c.Writer, response.Code, &response) }()

	version, ok := h.version(c)
	if !ok {
		response = responses.BadRequest
		return
	}

	settings, err := h.deliveryService.RemoveServicablePincode(ctx, code, version)
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			response = responses.PincodeNotFound
			return
		}
		response = h.failure(ctx, "deliveryService.RemoveServicablePincode", err)
		return
	}

	response = responses.Success
	response.Message = fmt.Sprintf("Pincode %s removed from servicable areas", code)
	response.Payload = settings
}

func (h *handler) UpdateAreaSettings(c *gin.Context) {
	var (
		response structs.Response
		request  structs.UpdateAreaSettingsRequest
		ctx      = c.Request.Context()
	)
	defer func() { reply.Json(c.Writer, response.Code, &response) }()

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	result, err := h.deliveryService.UpdateAreaSettings(ctx, request)
	if err != nil {
		response = h.failure(ctx, "deliveryService.UpdateAreaSettings", err)
		return
	}

	response = responses.Success
	response.Message = "Delivery area settings updated successfully!"
	if !result.HasCoordinates {
		response.Message = fmt.Sprintf("Saved! Location: %s, %s, %s. Note: Use \"Manually Add Servicable Pincodes\" to add delivery areas.",
			result.RestaurantArea, result.RestaurantCity, result.RestaurantState)
	}
	response.Payload = result
}

func (h *handler) GetPincodesInRadius(c *gin.Context) {
	var (
		response structs.Response
		ctx      = c.Request.Context()
	)
	defer func() { reply.Json(c.Writer, response.Code, &response) }()

	listing, err := h.deliveryService.PincodesInRadius(ctx)
	if err != nil {
		response = h.failure(ctx, "deliveryService.PincodesInRadius", err)
		return
	}

	response = responses.Success
	response.Payload = listing
}

// ScanNearbyPincodes scans around the ?pincode= query parameter, or the
// restaurant pincode when it is absent.
func (h *handler) ScanNearbyPincodes(c *gin.Context) {
	var (
		response structs.Response
		ctx      = c.Request.Context()
	)
	defer func() { reply.Json(c.Writer, response.Code, &response) }()

	result, err := h.deliveryService.ScanNearby(ctx, c.Query("pincode"))
	if err != nil {
		response = h.failure(ctx, "deliveryService.ScanNearby", err)
		return
	}

	response = responses.Success
	response.Message = fmt.Sprintf("Scanned %d pincodes, found %d within %s KM",
		result.ScannedCount, len(result.NearbyPincodes), cast.ToString(result.DeliveryRadius))
	if result.Note != "" {
		response.Message = "Could not get coordinates for restaurant pincode. Using database pincodes only."
	}
	response.Payload = result
}

func (h *handler) SetRestaurantLocations(c *gin.Context) {
	var (
		response structs.Response
		request  structs.SetRestaurantLocationsRequest
		ctx      = c.Request.Context()
	)
	defer func() { reply.Json(c.Writer, response.Code, &response) }()

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	settings, err := h.deliveryService.SetRestaurantLocations(ctx, request)
	if err != nil {
		response = h.failure(ctx, "deliveryService.SetRestaurantLocations", err)
		return
	}

	response = responses.Success
	response.Message = fmt.Sprintf("%d restaurant locations saved", len(settings.RestaurantLocations))
	response.Payload = settings
}

func (h *handler) AddRestaurantLocation(c *gin.Context) {
	var (
		response structs.Response
		request  structs.AddRestaurantLocationRequest
		ctx      = c.Request.Context()
	)
	defer func() { reply.Json(c.Writer, response.Code, &response) }()

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	settings, err := h.deliveryService.AddRestaurantLocation(ctx, request)
	if err != nil {
		response = h.failure(ctx, "deliveryService.AddRestaurantLocation", err)
		return
	}

	response = responses.Success
	for _, loc := range settings.RestaurantLocations {
		if loc.Pincode == request.Pincode {
			response.Message = fmt.Sprintf("Restaurant location %s (%s, %s) added successfully!", loc.Pincode, loc.Area, loc.City)
		}
	}
	response.Payload = settings
}

func (h *handler) RemoveRestaurantLocation(c *gin.Context) {
	var (
		response structs.Response
		code     = c.Param("pincode")
		ctx      = c.Request.Context()
	)
	defer func() { reply.Json(c.Writer, response.Code, &response) }()

	version, ok := h.version(c)
	if !ok {
		response = responses.BadRequest
		return
	}

	settings, err := h.deliveryService.RemoveRestaurantLocation(ctx, code, version)
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			response = responses.LocationNotFound
			return
		}
		response = h.failure(ctx, "deliveryService.RemoveRestaurantLocation", err)
		return
	}

	response = responses.Success
	response.Message = fmt.Sprintf("Restaurant location %s removed successfully!", code)
	response.Payload = settings
}

func (h *handler) ToggleRestaurantLocation(c *gin.Context) {
	var (
		response structs.Response
		code     = c.Param("pincode")
		ctx      = c.Request.Context()
	)
	defer func() { reply.Json(c.Writer, response.Code, &response) }()

	version, ok := h.version(c)
	if !ok {
		response = responses.BadRequest
		return
	}

	settings, err := h.deliveryService.ToggleRestaurantLocation(ctx, code, version)
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			response = responses.LocationNotFound
			return
		}
		response = h.failure(ctx, "deliveryService.ToggleRestaurantLocation", err)
		return
	}

	response = responses.Success
	for _, loc := range settings.RestaurantLocations {
		if loc.Pincode == code {
			state := "inactive"
			if loc.IsActive {
				state = "active"
			}
			response.Message = fmt.Sprintf("Restaurant location %s is now %s", code, state)
		}
	}
	response.Payload = settings
}

// version reads the optional ?version= query parameter. Absent means 0.
func (h *handler) version(c *gin.Context) (int64, bool) {
	raw := c.Query("version")
	if raw == "" {
		return 0, true
	}

	v, err := cast.ToInt64E(raw)
	if err != nil || v < 0 {
		h.logger.Warn(c.Request.Context(), " invalid version", zap.String("version", raw))
		return 0, false
	}
	return v, true
}

func (h *handler) failure(ctx context.Context, op string, err error) structs.Response {
	switch {
	case errors.Is(err, structs.ErrInvalidRadius):
		return responses.InvalidRadius
	case errors.Is(err, structs.ErrTooManyLocations):
		return responses.TooManyLocations
	case errors.Is(err, structs.ErrInvalidInput):
		return responses.InvalidPincode
	case errors.Is(err, structs.ErrNotFound):
		return responses.NotFound
	case errors.Is(err, structs.ErrConflict):
		h.logger.Info(ctx, " err on "+op, zap.Error(err))
		return responses.Conflict
	case errors.Is(err, structs.ErrNoLocationsConfigured):
		h.logger.Error(ctx, " err on "+op, zap.Error(err))
		return responses.Misconfigured
	case errors.Is(err, structs.ErrConfiguration):
		h.logger.Error(ctx, " err on "+op, zap.Error(err))
		return responses.RestaurantUnresolved
	}

	h.logger.Error(ctx, " err on "+op, zap.Error(err))
	return responses.InternalErr
}
