package assistant

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/middleware"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/users"
)

// Limiter caps work per key. Allow reports whether one more event fits.
type Limiter interface {
	Allow(key string) bool
}

type Handler struct {
	svc      Service
	accounts Accounts
	limiter  Limiter
	log      *zap.Logger
}

// NewHandler wires the HTTP surface. A nil limiter disables per-user limits.
func NewHandler(svc Service, accounts Accounts, limiter Limiter, log *zap.Logger) *Handler {
	return &Handler{
		svc:      svc,
		accounts: accounts,
		limiter:  limiter,
		log:      log.Named("http"),
	}
}

// HandleProcess runs one message through the pipeline.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message   string `json:"message"`
		UserID    string `json:"user_id"`
		UserPhone string `json:"user_phone"`
		UserName  string `json:"user_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if strings.TrimSpace(payload.Message) == "" || (payload.UserID == "" && payload.UserPhone == "") {
		writeError(w, http.StatusBadRequest, "missing message or user_id/user_phone")
		return
	}

	key := payload.UserID
	if key == "" {
		key = payload.UserPhone
	}
	if h.limiter != nil && !h.limiter.Allow(key) {
		h.log.Warn("rate limit exceeded",
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.String("key", key),
		)
		writeError(w, http.StatusTooManyRequests, "too many messages, slow down")
		return
	}

	res := h.svc.ProcessMessage(r.Context(), Input{
		Message:        payload.Message,
		UserID:         payload.UserID,
		ContactChannel: payload.UserPhone,
		DisplayName:    payload.UserName,
	})

	h.log.Info("processed",
		zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		zap.String("intent", string(res.Intent)),
		zap.Bool("success", res.Success),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"result": res,
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		UserPhone string `json:"user_phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if payload.Email == "" || payload.Password == "" {
		writeError(w, http.StatusBadRequest, "missing email or password")
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), payload.Email, payload.Password, payload.UserPhone)
	if err != nil {
		h.accountError(w, r, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, userView(user))
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		Name      string `json:"name"`
		UserPhone string `json:"user_phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if payload.Email == "" || payload.Password == "" || payload.Name == "" {
		writeError(w, http.StatusBadRequest, "missing email, password or name")
		return
	}

	user, err := h.accounts.Register(r.Context(), payload.Email, payload.Password, payload.Name, payload.UserPhone)
	if err != nil {
		h.accountError(w, r, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, userView(user))
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.accounts.Refresh(r.Context(), userID)
	if err != nil {
		h.accountError(w, r, "refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, userView(user))
}

func (h *Handler) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	h.accounts.Invalidate(chi.URLParam(r, "userID"))
	w.WriteHeader(http.StatusNoContent)
}

// ------------------------------------------------------------

func (h *Handler) accountError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, users.ErrInvalidCredentials), errors.Is(err, users.ErrCredentialMissing):
		status = http.StatusUnauthorized
	case errors.Is(err, users.ErrRegistrationFailed):
		status = http.StatusBadRequest
	case errors.Is(err, users.ErrUserNotFound):
		status = http.StatusNotFound
	}

	h.log.Warn(op+" failed",
		zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		zap.Int("status", status),
		zap.Error(err),
	)
	writeError(w, status, err.Error())
}

// userView is the public shape of a user; the credential stays server-side.
func userView(u *users.User) map[string]any {
	names := make([]string, 0, len(u.Children))
	for _, c := range u.Children {
		names = append(names, c.Name)
	}
	return map[string]any{
		"id":       u.ID,
		"email":    u.Email,
		"name":     u.Name,
		"role":     u.Role,
		"children": names,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
