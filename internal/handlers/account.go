package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"yt-sub/internal/middleware"
	"yt-sub/internal/models"
)

const registrationMessage = "Registered remote account. You'll receive notifications about new videos."

// CreateAccount registers new settings. A Slack notifier is required and
// must accept a confirmation message before the account is stored.
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		invalidRequest(w, "Invalid settings JSON")
		return
	}

	if settings.APIKey != "" {
		exists, err := h.accounts.Exists(r.Context(), settings.APIKey)
		if err != nil {
			h.logger.Errorw("Error checking account", "error", err)
			invalidRequest(w, err.Error())
			return
		}
		if exists {
			invalidRequest(w, "Already registered with this API key")
		} else {
			invalidRequest(w, "Invalid API key present. Please remove it and try again.")
		}
		return
	}

	slack, ok := settings.SlackNotifier()
	if !ok {
		invalidRequest(w, "Missing Slack notifier settings")
		return
	}
	if err := settings.Validate(); err != nil {
		invalidRequest(w, err.Error())
		return
	}

	if err := h.notifier.Notify(r.Context(), slack, []string{registrationMessage}, false); err != nil {
		invalidRequest(w, "Invalid Slack notifier settings. Sending message failed: "+err.Error())
		return
	}

	settings.APIKey = h.newAPIKey()
	if err := h.accounts.Save(r.Context(), settings.APIKey, settings); err != nil {
		h.logger.Errorw("Error saving account", "error", err)
		invalidRequest(w, err.Error())
		return
	}

	h.logger.Infow("Account registered", "channels", len(settings.Channels))
	writeJSON(w, http.StatusCreated, map[string]string{"api_key": settings.APIKey})
}

// UpdateAccount replaces the settings of an existing account. The marker is
// kept.
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		invalidRequest(w, "Invalid settings JSON")
		return
	}
	if settings.APIKey == "" {
		invalidRequest(w, "Missing API key!")
		return
	}

	exists, err := h.accounts.Exists(r.Context(), settings.APIKey)
	if err != nil {
		h.logger.Errorw("Error checking account", "error", err)
		invalidRequest(w, err.Error())
		return
	}
	if !exists {
		invalidRequest(w, "Invalid API key!")
		return
	}

	if _, ok := settings.SlackNotifier(); !ok {
		invalidRequest(w, "Missing Slack notifier settings")
		return
	}
	if err := settings.Validate(); err != nil {
		invalidRequest(w, err.Error())
		return
	}

	if err := h.accounts.Save(r.Context(), settings.APIKey, settings); err != nil {
		h.logger.Errorw("Error saving account", "error", err)
		invalidRequest(w, err.Error())
		return
	}

	w.Write([]byte("UPDATED"))
}

// DeleteAccount removes the account named by the X-API-KEY header together
// with its last run marker.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	apiKey, _ := middleware.APIKeyFromContext(r.Context())

	if _, err := h.accounts.Settings(r.Context(), apiKey); err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			invalidRequest(w, "Invalid API key!")
			return
		}
		h.logger.Errorw("Error reading account", "error", err)
		invalidRequest(w, err.Error())
		return
	}

	if err := h.accounts.Delete(r.Context(), apiKey); err != nil {
		h.logger.Errorw("Error deleting account", "error", err)
		invalidRequest(w, err.Error())
		return
	}

	w.Write([]byte("DELETED"))
}
