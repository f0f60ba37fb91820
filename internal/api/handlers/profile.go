package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/clearhaven/lore/internal/api"
	"github.com/clearhaven/lore/internal/profile"
)

// ProfileService maintains the user profile used for prompt personalization.
type ProfileService interface {
	Get() profile.Profile
	SetLevel(level string) error
	SetInterests(interests []string) error
	SetPreferences(preferences []string) error
}

type ProfileHandler struct {
	svc ProfileService
}

func NewProfileHandler(svc ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// UpdateProfileRequest carries a partial profile update; absent fields are
// left untouched.
type UpdateProfileRequest struct {
	Level       *string   `json:"level"`
	Interests   *[]string `json:"interests"`
	Preferences *[]string `json:"preferences"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.svc.Get())
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Level == nil && req.Interests == nil && req.Preferences == nil {
		api.Error(w, http.StatusBadRequest, "nothing to update: provide level, interests or preferences")
		return
	}

	if req.Level != nil {
		if err := h.svc.SetLevel(*req.Level); err != nil {
			api.HandleError(w, err)
			return
		}
	}
	if req.Interests != nil {
		if err := h.svc.SetInterests(*req.Interests); err != nil {
			api.HandleError(w, err)
			return
		}
	}
	if req.Preferences != nil {
		if err := h.svc.SetPreferences(*req.Preferences); err != nil {
			api.HandleError(w, err)
			return
		}
	}

	api.Success(w, http.StatusOK, h.svc.Get())
}
