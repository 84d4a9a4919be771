package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"yt-sub/internal/accounts"
	"yt-sub/internal/middleware"
	"yt-sub/internal/models"
	"yt-sub/internal/youtube"
	"yt-sub/pkg/tasks"
)

// Notifier delivers the registration confirmation.
type Notifier interface {
	Notify(ctx context.Context, notifier models.Notifier, messages []string, cronMode bool) error
}

type Handlers struct {
	accounts    accounts.Repository
	resolver    youtube.Resolver
	notifier    Notifier
	asynqClient tasks.TaskEnqueuer
	logger      *zap.SugaredLogger
	newAPIKey   func() string
}

func New(repo accounts.Repository, resolver youtube.Resolver, notifier Notifier, asynqClient tasks.TaskEnqueuer, logger *zap.SugaredLogger) *Handlers {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handlers{
		accounts:    repo,
		resolver:    resolver,
		notifier:    notifier,
		asynqClient: asynqClient,
		logger:      logger,
		newAPIKey:   uuid.NewString,
	}
}

// Router registers the API routes.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/channel_data/{handle}", h.GetChannelData).Methods(http.MethodGet)
	r.HandleFunc("/account", h.CreateAccount).Methods(http.MethodPost)
	r.HandleFunc("/account", h.UpdateAccount).Methods(http.MethodPut)
	r.Handle("/account", middleware.RequireAPIKey(http.HandlerFunc(h.DeleteAccount))).Methods(http.MethodDelete)
	r.HandleFunc("/uptime", h.Uptime).Methods(http.MethodGet)
	r.HandleFunc("/pollz", h.PostPoll).Methods(http.MethodPost)
	return r
}

func (h *Handlers) Uptime(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// PostPoll enqueues an immediate check of every account.
func (h *Handlers) PostPoll(w http.ResponseWriter, r *http.Request) {
	task, err := tasks.NewCheckAllAccountsTask()
	if err != nil {
		h.logger.Errorw("Error creating check task", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if _, err := h.asynqClient.Enqueue(task); err != nil {
		h.logger.Errorw("Error enqueuing check task", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("ENQUEUED"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func invalidRequest(w http.ResponseWriter, reason string) {
	http.Error(w, reason, http.StatusBadRequest)
}
