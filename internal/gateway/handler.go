package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rpay/imagegate/internal/metrics"
	"github.com/rpay/imagegate/internal/middleware"
	"github.com/rpay/imagegate/internal/quota"
	"github.com/rpay/imagegate/internal/upstream/render"
	"github.com/rpay/imagegate/internal/usagelog"
)

// Handler fronts the upstream renderer with quota admission.
type Handler struct {
	controller  *quota.Controller
	renderer    *render.Client
	committer   *usagelog.Committer
	metrics     *metrics.Metrics
	logger      *log.Logger
	styleSuffix string
}

func NewHandler(controller *quota.Controller, renderer *render.Client, committer *usagelog.Committer, m *metrics.Metrics, logger *log.Logger, styleSuffix string) *Handler {
	return &Handler{
		controller:  controller,
		renderer:    renderer,
		committer:   committer,
		metrics:     m,
		logger:      logger,
		styleSuffix: styleSuffix,
	}
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status": "healthy", "service": "imagegate"}`))
}

// HandleGenerate serves GET /generate/{prompt} and POST /generate.
// Malformed requests are rejected before the ledger is touched; denial and
// upstream failure each consume nothing further — a unit already charged at
// admission stays charged.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var prompt string
	var params RenderParams
	var err error

	switch r.Method {
	case http.MethodGet:
		prompt, params, err = decodeGetRequest(r)
	case http.MethodPost:
		prompt, params, err = decodePostRequest(r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prompt = NormalizePrompt(prompt)
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "Missing prompt")
		return
	}

	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Caller not resolved")
		return
	}

	h.metrics.ObserveRequest()
	dec := h.controller.Decide(caller.Identity, caller.Tier, time.Now())
	if !dec.Admitted {
		h.metrics.ObserveDenial(string(dec.DeniedWindow))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": dec.Reason,
			"limit": dec.Limit,
			"reset": dec.ResetAt,
		})
		return
	}
	h.metrics.ObserveAdmit()

	requestID := ulid.Make().String()
	start := time.Now()
	result, err := h.renderer.Render(render.Request{
		Prompt: EnrichPrompt(prompt, h.styleSuffix),
		Width:  params.Width,
		Height: params.Height,
		Seed:   params.Seed,
		NoLogo: params.NoLogo,
		Model:  params.Model,
	})
	if err != nil {
		h.logger.Printf("ERROR [render] request_id=%s identity=%s: %v", requestID, caller.Identity, err)
		h.metrics.ObserveUpstreamError()
		h.committer.RecordAsync(usagelog.Entry{
			RequestID:   requestID,
			Identity:    caller.Identity,
			Tier:        dec.UserType,
			Model:       params.Model,
			PromptChars: len(prompt),
			Status:      http.StatusInternalServerError,
			CreatedAt:   time.Now(),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "Image generation failed",
			"details": err.Error(),
		})
		return
	}

	h.metrics.ObserveRender(time.Since(start).Milliseconds())
	h.committer.RecordAsync(usagelog.Entry{
		RequestID:   requestID,
		Identity:    caller.Identity,
		Tier:        dec.UserType,
		Model:       params.Model,
		PromptChars: len(prompt),
		Status:      http.StatusOK,
		CreatedAt:   time.Now(),
	})

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("X-RateLimit-Type", dec.UserType)
	w.Header().Set("X-RateLimit-Remaining", dec.Remaining)
	w.Header().Set("X-Request-Id", requestID)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(result.Body)
}

// decodeGetRequest pulls the prompt out of the URL path after /generate/ and
// the render parameters out of the query string. The prompt segment is
// percent-decoded with '+' treated as space, matching how clients paste
// prompts into URLs.
func decodeGetRequest(r *http.Request) (string, RenderParams, error) {
	raw := strings.TrimPrefix(r.URL.EscapedPath(), "/generate")
	raw = strings.TrimPrefix(raw, "/")
	prompt, err := url.QueryUnescape(raw)
	if err != nil {
		return "", RenderParams{}, fmt.Errorf("invalid prompt encoding")
	}
	params, err := paramsFromQuery(r.URL.Query())
	if err != nil {
		return "", RenderParams{}, err
	}
	return prompt, params, nil
}

func decodePostRequest(r *http.Request) (string, RenderParams, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", RenderParams{}, fmt.Errorf("failed to read request body")
	}
	var req generateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", RenderParams{}, fmt.Errorf("invalid JSON body")
	}
	params, err := req.params()
	if err != nil {
		return "", RenderParams{}, err
	}
	return req.Prompt, params, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
