package server

import (
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"go-juno/bridge"
	"go-juno/midi"
	"go-juno/params"
	"go-juno/preset"
)

type StatusResponse struct {
	Engine   string       `json:"engine"`
	Stats    bridge.Stats `json:"stats"`
	Sounding []uint8      `json:"sounding"`
	Device   string       `json:"device,omitempty"`
}

type PresetSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Builtin   bool      `json:"builtin"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SelectDeviceRequest struct {
	// Empty deselects.
	ID string `json:"id" validate:"max=256"`
}

// Status handles GET /status
func (s *Server) Status(c *fiber.Ctx) error {
	resp := StatusResponse{
		Engine:   s.deps.Engine.State(),
		Stats:    s.deps.Engine.Stats(),
		Sounding: s.deps.Voices.Sounding(),
	}
	if resp.Sounding == nil {
		resp.Sounding = []uint8{}
	}
	if id, ok := s.deps.Router.Selected(); ok {
		resp.Device = id
	}
	return OK(c, resp)
}

// ListPresets handles GET /presets
func (s *Server) ListPresets(c *fiber.Ctx) error {
	names := s.deps.Store.Names()
	out := make([]PresetSummary, 0, len(names))
	for _, n := range names {
		r, err := s.deps.Store.Get(n)
		if err != nil {
			continue
		}
		out = append(out, PresetSummary{ID: r.ID.String(), Name: r.Name, Builtin: r.Builtin, UpdatedAt: r.UpdatedAt})
	}
	return OK(c, out)
}

func presetName(c *fiber.Ctx) (string, error) {
	return url.PathUnescape(c.Params("name"))
}

// GetPreset handles GET /presets/:name
func (s *Server) GetPreset(c *fiber.Ctx) error {
	name, err := presetName(c)
	if err != nil {
		return ValidationError(c, "Invalid preset name", nil)
	}
	r, err := s.deps.Store.Get(name)
	if err != nil {
		return presetError(c, err)
	}
	return OK(c, r)
}

// SavePreset handles PUT /presets/:name. An empty body saves the current
// parameter state.
func (s *Server) SavePreset(c *fiber.Ctx) error {
	name, err := presetName(c)
	if err != nil {
		return ValidationError(c, "Invalid preset name", nil)
	}

	var snap params.Snapshot
	if len(c.Body()) == 0 {
		snap, err = s.deps.Store.Capture()
		if err != nil {
			return presetError(c, err)
		}
	} else if err := json.Unmarshal(c.Body(), &snap); err != nil {
		return ValidationError(c, "Invalid request body", nil)
	}

	if err := s.deps.Store.Save(c.UserContext(), name, snap); err != nil {
		return presetError(c, err)
	}
	r, _ := s.deps.Store.Get(name)
	return OK(c, r)
}

// DeletePreset handles DELETE /presets/:name
func (s *Server) DeletePreset(c *fiber.Ctx) error {
	name, err := presetName(c)
	if err != nil {
		return ValidationError(c, "Invalid preset name", nil)
	}
	if err := s.deps.Store.Delete(c.UserContext(), name); err != nil {
		return presetError(c, err)
	}
	return NoContent(c)
}

// ApplyPreset handles POST /presets/:name/apply
func (s *Server) ApplyPreset(c *fiber.Ctx) error {
	name, err := presetName(c)
	if err != nil {
		return ValidationError(c, "Invalid preset name", nil)
	}
	if err := s.deps.Store.Recall(name); err != nil {
		return presetError(c, err)
	}
	return OK(c, fiber.Map{"applied": name})
}

// presetError maps store errors onto the envelope. A failed persist still
// changed the in-memory table, so it is reported as a server error.
func presetError(c *fiber.Ctx, err error) error {
	var ve *preset.ValidationError
	switch {
	case errors.Is(err, preset.ErrNotFound):
		return NotFound(c, err.Error())
	case errors.Is(err, preset.ErrInvalidName):
		return ValidationError(c, err.Error(), nil)
	case errors.As(err, &ve):
		return ValidationError(c, "Incomplete parameter set", fiber.Map{
			"missing": idNames(ve.Missing),
			"invalid": idNames(ve.Invalid),
		})
	case errors.Is(err, preset.ErrPersist):
		return Error(c, fiber.StatusInternalServerError, CodePersistError, err.Error(), nil)
	}
	return ServiceError(c, err.Error())
}

func idNames(ids []params.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// ListDevices handles GET /devices
func (s *Server) ListDevices(c *fiber.Ctx) error {
	ports := s.deps.Devices.Ports()
	if ports == nil {
		ports = []midi.Port{}
	}
	return OK(c, ports)
}

// SelectDevice handles POST /devices/select
func (s *Server) SelectDevice(c *fiber.Ctx) error {
	var req SelectDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return ValidationError(c, "Invalid request body", nil)
	}
	if err := s.validator.Struct(&req); err != nil {
		return ValidationError(c, "Validation failed", formatValidationErrors(err))
	}
	if err := s.deps.Router.Select(req.ID); err != nil {
		if errors.Is(err, midi.ErrNoSuchPort) {
			return NotFound(c, err.Error())
		}
		return ServiceError(c, err.Error())
	}
	return OK(c, fiber.Map{"selected": req.ID})
}
