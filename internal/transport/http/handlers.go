package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"accounts/internal/domain"
	"accounts/internal/dto"
	"accounts/internal/service"
	"accounts/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	users     service.UserService
	auth      service.AuthService
	tokens    service.TokenService
	passwords service.PasswordService
	validator *validation.UserValidator
}

func NewHandler(users service.UserService, auth service.AuthService, tokens service.TokenService, passwords service.PasswordService) *Handler {
	return &Handler{
		users:     users,
		auth:      auth,
		tokens:    tokens,
		passwords: passwords,
		validator: validation.NewUserValidator(users),
	}
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.NewValidationError(map[string]string{"request": "VALIDATION_FAILURE"}))
		return
	}

	if fields := h.validator.Register(r.Context(), req); fields != nil {
		writeError(w, r, domain.NewValidationError(fields))
		return
	}

	if err := h.users.Register(r.Context(), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, "USER_SUCCESS")
}

func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.users.Activate(r.Context(), token); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, "ACCOUNT_ACTIVATION_SUCCESS")
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var excludeID uint
	if ident := IdentityFromContext(r.Context()); ident != nil {
		excludeID = ident.ID
	}

	page, err := h.users.List(r.Context(), paginationFromContext(r.Context()), excludeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, domain.ErrUserNotFound)
		return
	}

	user, err := h.users.Get(r.Context(), uint(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, domain.ErrUnauthorizedUserUpdate)
		return
	}

	var callerID uint
	if ident := IdentityFromContext(r.Context()); ident != nil {
		callerID = ident.ID
	}

	// The body is decoded leniently: an unauthorized caller gets the
	// forbidden response regardless of what, if anything, was posted.
	var req dto.UserUpdateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.users.Update(r.Context(), callerID, uint(targetID), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, "USER_UPDATE_SUCCESS")
}

func (h *Handler) AuthUser(w http.ResponseWriter, r *http.Request) {
	var req dto.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.ErrAuthenticationFailure)
		return
	}
	// Missing credentials fail the same way as wrong ones.
	if req.Email == "" || req.Password == "" {
		writeError(w, r, domain.ErrAuthenticationFailure)
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{ID: user.ID, Username: user.Username, Token: token})
}
