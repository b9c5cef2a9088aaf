// Package handler exposes registry lookups over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"innbot/internal/registry/domain/organization"
	"innbot/internal/registry/service"
	dErrors "innbot/pkg/domain-errors"
	"innbot/pkg/platform/httputil"
)

// LookupService answers one identifier query.
type LookupService interface {
	Lookup(ctx context.Context, raw string) (*service.Reply, error)
}

// Handler handles HTTP requests for registry lookups.
type Handler struct {
	service LookupService
	logger  *slog.Logger
}

// New creates a new registry handler.
func New(svc LookupService, logger *slog.Logger) *Handler {
	return &Handler{
		service: svc,
		logger:  logger,
	}
}

// Register mounts the handler routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/lookup", h.HandleLookup)
}

// LookupRequest is the request body for an identifier lookup.
type LookupRequest struct {
	Query string `json:"query"`
}

// LookupResponse is the response body for a classified identifier.
type LookupResponse struct {
	Valid        bool                  `json:"valid"`
	Kind         string                `json:"kind"`
	Found        bool                  `json:"found"`
	Cached       bool                  `json:"cached"`
	Report       string                `json:"report"`
	Organization *OrganizationResponse `json:"organization,omitempty"`
}

// OrganizationResponse is the normalized record as JSON.
type OrganizationResponse struct {
	ShortName      string                 `json:"short_name"`
	TaxID          string                 `json:"inn"`
	RegistrationID string                 `json:"ogrn"`
	KPP            string                 `json:"kpp"`
	Address        string                 `json:"address"`
	Capital        *CapitalResponse       `json:"capital,omitempty"`
	Management     *ManagementResponse    `json:"management,omitempty"`
	MainActivity   string                 `json:"main_activity,omitempty"`
	Activities     []ActivityResponse     `json:"activities"`
	MetroStations  []MetroStationResponse `json:"metro"`
}

type CapitalResponse struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

type ManagementResponse struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type ActivityResponse struct {
	Name string `json:"name"`
	Main bool   `json:"main"`
}

type MetroStationResponse struct {
	Name       string `json:"name"`
	Line       string `json:"line"`
	DistanceKM string `json:"distance_km"`
}

// HandleLookup handles POST /v1/lookup requests.
//
// Invalid identifiers are answered with 400 and the user-facing invalid-input
// text. A not-found organization is a 200 with found=false.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[LookupRequest](w, r, h.logger)
	if !ok {
		return
	}

	reply, err := h.service.Lookup(r.Context(), req.Query)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !reply.Valid {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, reply.Text))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toLookupResponse(reply))
}

func toLookupResponse(reply *service.Reply) *LookupResponse {
	resp := &LookupResponse{
		Valid:  reply.Valid,
		Kind:   reply.Kind.String(),
		Found:  reply.Outcome.Found,
		Cached: reply.Cached,
		Report: reply.Text,
	}
	if reply.Outcome.Found {
		resp.Organization = toOrganizationResponse(reply.Outcome.Record)
	}
	return resp
}

func toOrganizationResponse(rec organization.Record) *OrganizationResponse {
	org := &OrganizationResponse{
		ShortName:      rec.ShortName,
		TaxID:          rec.TaxID,
		RegistrationID: rec.RegistrationID,
		KPP:            rec.KPP,
		Address:        rec.Address,
		Activities:     make([]ActivityResponse, 0, len(rec.Activities)),
		MetroStations:  make([]MetroStationResponse, 0, len(rec.MetroStations)),
	}
	if rec.Capital != nil {
		org.Capital = &CapitalResponse{Amount: rec.Capital.Amount, Unit: rec.Capital.Unit}
	}
	if rec.Management != nil {
		org.Management = &ManagementResponse{Name: rec.Management.PersonName, Title: rec.Management.Title}
	}
	if main, ok := rec.MainActivity(); ok {
		org.MainActivity = main.Name
	}
	for _, a := range rec.Activities {
		org.Activities = append(org.Activities, ActivityResponse{Name: a.Name, Main: a.IsMain})
	}
	for _, m := range rec.MetroStations {
		org.MetroStations = append(org.MetroStations, MetroStationResponse{Name: m.Name, Line: m.Line, DistanceKM: m.DistanceKM})
	}
	return org
}
