package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"yt-sub/internal/youtube"
)

const throttledMessage = `It looks like YouTube API calls are currently throttled.

You can try again later or find the channel data manually.`

// GetChannelData resolves a handle to {"channel_id", "channel_name"}.
func (h *Handlers) GetChannelData(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	data, err := h.resolver.Resolve(r.Context(), handle)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, data)
	case errors.Is(err, youtube.ErrChannelNotFound):
		http.Error(w, "Channel not found", http.StatusNotFound)
	case errors.Is(err, youtube.ErrThrottled):
		http.Error(w, throttledMessage, http.StatusServiceUnavailable)
	default:
		h.logger.Errorw("Error resolving channel", "handle", handle, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
