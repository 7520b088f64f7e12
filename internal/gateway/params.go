package gateway

import (
	"fmt"
	"net/url"
	"strconv"
)

// RenderParams are the renderer knobs a caller may set, with the gateway's
// defaults already applied.
type RenderParams struct {
	Width  int
	Height int
	Seed   int
	NoLogo bool
	Model  string
}

func defaultParams() RenderParams {
	return RenderParams{
		Width:  1280,
		Height: 720,
		Seed:   42,
		NoLogo: true,
		Model:  "flux",
	}
}

// paramsFromQuery overlays query values on the defaults. Invalid values are
// a caller error, reported before any quota is consumed.
func paramsFromQuery(q url.Values) (RenderParams, error) {
	p := defaultParams()
	if err := intParam(q, "width", &p.Width); err != nil {
		return p, err
	}
	if err := intParam(q, "height", &p.Height); err != nil {
		return p, err
	}
	if raw := q.Get("seed"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("invalid seed: %q", raw)
		}
		p.Seed = v
	}
	if raw := q.Get("nologo"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return p, fmt.Errorf("invalid nologo: %q", raw)
		}
		p.NoLogo = v
	}
	if m := q.Get("model"); m != "" {
		p.Model = m
	}
	return p, nil
}

func intParam(q url.Values, name string, dst *int) error {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fmt.Errorf("invalid %s: %q", name, raw)
	}
	*dst = v
	return nil
}

// generateRequest is the POST /generate body. Pointer fields distinguish
// "absent, use the default" from an explicit value.
type generateRequest struct {
	Prompt string `json:"prompt"`
	Width  *int   `json:"width"`
	Height *int   `json:"height"`
	Seed   *int   `json:"seed"`
	NoLogo *bool  `json:"nologo"`
	Model  string `json:"model"`
}

func (req *generateRequest) params() (RenderParams, error) {
	p := defaultParams()
	if req.Width != nil {
		if *req.Width <= 0 {
			return p, fmt.Errorf("invalid width: %d", *req.Width)
		}
		p.Width = *req.Width
	}
	if req.Height != nil {
		if *req.Height <= 0 {
			return p, fmt.Errorf("invalid height: %d", *req.Height)
		}
		p.Height = *req.Height
	}
	if req.Seed != nil {
		p.Seed = *req.Seed
	}
	if req.NoLogo != nil {
		p.NoLogo = *req.NoLogo
	}
	if req.Model != "" {
		p.Model = req.Model
	}
	return p, nil
}
