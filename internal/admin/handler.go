package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rpay/imagegate/internal/quota"
	"github.com/rpay/imagegate/internal/usagelog"
	"github.com/rpay/imagegate/pkg/keygen"
)

// Handler serves operator endpoints, all guarded by the admin secret.
// store may be nil when the audit log is disabled.
type Handler struct {
	ledger *quota.Ledger
	store  *usagelog.Store
	secret string
}

func NewHandler(ledger *quota.Ledger, store *usagelog.Store, secret string) *Handler {
	return &Handler{ledger: ledger, store: store, secret: secret}
}

func (h *Handler) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("x-admin-secret") != h.secret {
		http.Error(w, `{"error": "Invalid admin secret"}`, http.StatusForbidden)
		return false
	}
	return true
}

// UsageResponse is the body of GET /admin/usage.
type UsageResponse struct {
	Identities int                `json:"identities"`
	Records    []quota.UsageEntry `json:"records"`
}

// Usage handles GET /admin/usage — a ledger snapshot for dashboards. The
// background sweeper keeps idle records' windows current, so the counts here
// are honest even for identities that stopped sending requests.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error": "Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(w, r) {
		return
	}

	records := h.ledger.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(UsageResponse{
		Identities: len(records),
		Records:    records,
	})
}

// RequestsResponse is the body of GET /admin/requests.
type RequestsResponse struct {
	Requests []usagelog.Entry `json:"requests"`
}

const (
	defaultRequestsLimit = 50
	maxRequestsLimit     = 500
)

// Requests handles GET /admin/requests — the most recent audit log entries,
// newest first. Returns 404 when the audit log is disabled.
func (h *Handler) Requests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error": "Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(w, r) {
		return
	}
	if h.store == nil {
		http.Error(w, `{"error": "Usage log disabled"}`, http.StatusNotFound)
		return
	}

	limit := defaultRequestsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxRequestsLimit {
			http.Error(w, `{"error": "Invalid limit"}`, http.StatusBadRequest)
			return
		}
		limit = v
	}

	entries, err := h.store.Recent(limit)
	if err != nil {
		http.Error(w, `{"error": "Failed to read usage log"}`, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []usagelog.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RequestsResponse{Requests: entries})
}

// CreateKeyResponse is the body of POST /admin/keys.
type CreateKeyResponse struct {
	APIKey string `json:"api_key"`
}

// CreateKey handles POST /admin/keys — mints a privileged API key. The key
// only takes effect once the operator adds it to the API_KEYS allow-list.
func (h *Handler) CreateKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error": "Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(w, r) {
		return
	}

	apiKey, err := keygen.GenerateAPIKey()
	if err != nil {
		http.Error(w, `{"error": "Failed to generate API key"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateKeyResponse{APIKey: apiKey})
}
