package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/diewo77/invoicing-api/internal/httpx"
	"github.com/diewo77/invoicing-api/internal/models"
	"github.com/diewo77/invoicing-api/internal/repository"
)

type clientView struct {
	ID                    uint   `json:"id"`
	Name                  string `json:"name"`
	Address               string `json:"address"`
	CompanyRegistrationNo string `json:"company_registration_no"`
}

type clientListResponse struct {
	Clients []clientView `json:"clients"`
}

type ClientHandler struct {
	ref *repository.ReferenceStore
	log zerolog.Logger
}

func NewClientHandler(ref *repository.ReferenceStore, log zerolog.Logger) *ClientHandler {
	return &ClientHandler{ref: ref, log: log.With().Str("handler", "clients").Logger()}
}

// List: GET /clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.ref.ListClients(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list clients")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	views := make([]clientView, 0, len(clients))
	for _, c := range clients {
		views = append(views, newClientView(c))
	}
	httpx.JSON(w, http.StatusOK, clientListResponse{Clients: views})
}

// Get: GET /clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	client, err := h.ref.GetClient(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
			return
		}
		h.log.Error().Err(err).Uint("client_id", id).Msg("get client")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, newClientView(client))
}

func newClientView(c models.Client) clientView {
	return clientView{ID: c.ID, Name: c.Name, Address: c.Address, CompanyRegistrationNo: c.CompanyRegistrationNo}
}

// parseIDParam reads the {id} route parameter. A non-positive or non-numeric
// id cannot match any resource, so it reports 404.
func parseIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return 0, false
	}
	return uint(id), true
}
