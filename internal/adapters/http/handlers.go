package http

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/bboxmap/internal/core/domain"
)

// coordinatesRequest is the JSON body of /v1/bbox/validate. Missing fields
// fail the Required rule.
type coordinatesRequest struct {
	MinLong *float64 `json:"minLong"`
	MinLat  *float64 `json:"minLat"`
	MaxLong *float64 `json:"maxLong"`
	MaxLat  *float64 `json:"maxLat"`
}

func (r coordinatesRequest) values() map[string]string {
	return map[string]string{
		domain.FieldMinLong: formatOptional(r.MinLong),
		domain.FieldMinLat:  formatOptional(r.MinLat),
		domain.FieldMaxLong: formatOptional(r.MaxLong),
		domain.FieldMaxLat:  formatOptional(r.MaxLat),
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ValidationResponse is the body returned by /v1/bbox/validate.
type ValidationResponse struct {
	Result      string             `json:"result"`
	Valid       bool               `json:"valid"`
	FieldErrors domain.FieldErrors `json:"field_errors,omitempty"`
	Message     string             `json:"message,omitempty"`
	BBox        string             `json:"bbox,omitempty"`
	Area        *float64           `json:"area,omitempty"`
	AreaLimit   float64            `json:"area_limit"`
}

// ValidateHandler runs the field checks and the validator without fetching.
func ValidateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req coordinatesRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		resp := ValidationResponse{AreaLimit: deps.Form.AreaLimit()}
		box, ferrs := domain.ParseForm(req.values())
		if len(ferrs) > 0 {
			resp.Result = "field_error"
			resp.FieldErrors = ferrs
			return c.JSON(resp)
		}

		result := deps.Form.Validate(box)
		area := box.Area()
		resp.Result = result.String()
		resp.Valid = result == domain.Valid
		resp.BBox = box.QueryValue()
		resp.Area = &area
		switch result {
		case domain.InvalidLatitudeOrder, domain.InvalidLongitudeOrder:
			resp.Message = domain.OrderingMessage
		case domain.AreaTooLarge:
			resp.Message = domain.AreaMessage
		}
		return c.JSON(resp)
	}
}

// ElementsHandler returns the elements inside ?bbox=left,bottom,right,top as
// GeoJSON. It responds 204 when the payload held nothing renderable.
func ElementsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		param := c.Query("bbox")
		if param == "" {
			return errBadRequest(c, "bbox query parameter is required")
		}
		box, ferrs := domain.ParseBBoxParam(param)
		if len(ferrs) > 0 {
			return errDomain(c, ferrs)
		}

		fc, err := deps.Form.Elements(c.UserContext(), box)
		if err != nil {
			return errDomain(c, err)
		}
		if fc == nil {
			return c.SendStatus(fiber.StatusNoContent)
		}

		body, err := fc.MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Content-Type", "application/geo+json")
		return c.Send(body)
	}
}
