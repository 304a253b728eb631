package http

import (
	"encoding/json"
	"net/http"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"
	"autofleet-backoffice/internal/service"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var client domain.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if err := h.clientService.AddClient(r.Context(), &client); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid client id"})
		return
	}
	client, err := h.clientService.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid client id"})
		return
	}
	client, err := h.clientService.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(client); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	client.ID = id
	if err := h.clientService.UpdateClient(r.Context(), client); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid client id"})
		return
	}
	if err := h.clientService.DeleteClient(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "client deleted"})
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.ClientFilter{
		Status:   domain.ClientStatus(r.URL.Query().Get("status")),
		Search:   r.URL.Query().Get("search"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	}
	clients, total, err := h.clientService.ListClients(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(clients, filter.Page, filter.PageSize, total))
}

type blacklistRequest struct {
	Blacklisted bool   `json:"blacklisted"`
	Reason      string `json:"reason"`
}

// Blacklist toggles the client in or out of the blacklist.
func (h *ClientHandler) Blacklist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid client id"})
		return
	}
	var req blacklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	var client *domain.Client
	if req.Blacklisted {
		client, err = h.clientService.Blacklist(r.Context(), id, req.Reason)
	} else {
		client, err = h.clientService.Reinstate(r.Context(), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) RentalHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid client id"})
		return
	}
	page, pageSize := queryInt(r, "page"), queryInt(r, "page_size")
	rentals, total, err := h.clientService.RentalHistory(r.Context(), id, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(rentals, page, pageSize, total))
}
