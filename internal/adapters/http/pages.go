package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/bboxmap/internal/core/domain"
	"github.com/samirrijal/bboxmap/internal/core/usecases"
	"github.com/samirrijal/bboxmap/internal/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// inputView is one coordinate field as rendered in the form.
type inputView struct {
	domain.CoordinateInput
	Value   string
	Invalid bool
	Message string
}

type pageData struct {
	Inputs     []inputView
	Summary    string
	FetchError string
	CanRetry   bool
	Fetching   bool
	AreaLimit  float64
	Map        domain.MapView
}

func newPageData(state *domain.FormState, areaLimit float64) pageData {
	inputs := make([]inputView, 0, len(domain.CoordinateInputs))
	for _, in := range domain.CoordinateInputs {
		v := inputView{CoordinateInput: in, Value: state.Values[in.Name]}
		if fe, ok := state.FieldErrors[in.Name]; ok {
			v.Invalid = true
			v.Message = fe.Message
		}
		inputs = append(inputs, v)
	}
	return pageData{
		Inputs:     inputs,
		Summary:    state.Summary,
		FetchError: state.FetchError,
		CanRetry:   state.RetryBox != nil,
		Fetching:   state.Phase == domain.PhaseFetching,
		AreaLimit:  areaLimit,
		Map:        usecases.RenderMap(state.Geometry, state.LastBox),
	}
}

func renderPage(c *fiber.Ctx, status int, state *domain.FormState, areaLimit float64) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageData(state, areaLimit)); err != nil {
		logging.FromContext(c.UserContext()).Error("render page", "error", err)
		return errInternal(c, "render page")
	}
	c.Set("Cache-Control", "no-store")
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

// statusFor picks the response status for a form state after a submission.
func statusFor(state *domain.FormState) int {
	switch {
	case state.FetchError != "":
		return fiber.StatusBadGateway
	case state.Phase == domain.PhaseFetching:
		return fiber.StatusConflict
	case state.HasErrors():
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusOK
	}
}

// IndexHandler renders the form and the session's current map.
func IndexHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, err := deps.Form.State(c.UserContext(), sessionID(c))
		if err != nil {
			return errInternal(c, err.Error())
		}
		return renderPage(c, fiber.StatusOK, state, deps.Form.AreaLimit())
	}
}

// SubmitHandler validates the posted coordinates and, when valid, fetches
// and displays the elements inside them.
func SubmitHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		values := make(map[string]string, len(domain.CoordinateInputs))
		for _, in := range domain.CoordinateInputs {
			values[in.Name] = c.FormValue(in.Name)
		}

		state, err := deps.Form.Submit(c.UserContext(), sessionID(c), values)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return renderPage(c, statusFor(state), state, deps.Form.AreaLimit())
	}
}

// RetryHandler refetches the last failed bounding box.
func RetryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, err := deps.Form.Retry(c.UserContext(), sessionID(c))
		if errors.Is(err, domain.ErrNothingToRetry) {
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		if err != nil && state == nil {
			return errInternal(c, err.Error())
		}
		if err != nil {
			logging.FromContext(c.UserContext()).Warn("retry rejected", slog.String("error", err.Error()))
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		return renderPage(c, statusFor(state), state, deps.Form.AreaLimit())
	}
}

// ResetHandler clears the form and the map. While a fetch is pending the
// page is re-rendered unchanged with a 409.
func ResetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := deps.Form.Reset(c.UserContext(), sessionID(c))
		if errors.Is(err, domain.ErrFetchInProgress) {
			state, err := deps.Form.State(c.UserContext(), sessionID(c))
			if err != nil {
				return errInternal(c, err.Error())
			}
			state.Summary = domain.ErrFetchInProgress.Error()
			return renderPage(c, fiber.StatusConflict, state, deps.Form.AreaLimit())
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}
