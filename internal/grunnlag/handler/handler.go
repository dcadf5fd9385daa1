package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"grunnlag/internal/grunnlag/models"
	"grunnlag/internal/platform/metrics"
	"grunnlag/internal/platform/middleware"
	"grunnlag/pkg/domain"
	dErrors "grunnlag/pkg/domain-errors"
	"grunnlag/pkg/platform/httputil"
	"grunnlag/pkg/requestcontext"
)

// Service defines the grunnlag operations exposed over HTTP.
type Service interface {
	AppendAll(ctx context.Context, sakID domain.SakID, nye []models.NyOpplysning) ([]int64, error)
	CurrentSnapshot(ctx context.Context, sakID domain.SakID) (*models.Opplysningsgrunnlag, error)
	SnapshotAsOf(ctx context.Context, sakID domain.SakID, versjon int64) (*models.Opplysningsgrunnlag, error)
	FactOfType(ctx context.Context, sakID domain.SakID, typ models.Opplysningstype) (*models.Opplysning, bool, error)
	Persongalleri(ctx context.Context, sakID domain.SakID) (*models.Persongalleri, error)
	SakerForPerson(ctx context.Context, fnr domain.Folkeregisteridentifikator) ([]models.SakOgRolle, error)
	KnyttBehandling(ctx context.Context, behandlingID domain.BehandlingID, sakID domain.SakID) (*models.BehandlingVersjon, error)
	LaasBehandling(ctx context.Context, behandlingID domain.BehandlingID) error
	SnapshotForBehandling(ctx context.Context, behandlingID domain.BehandlingID) (*models.Opplysningsgrunnlag, error)
}

// maxBodyBytes bounds request bodies; one batch of opplysninger fits comfortably.
const maxBodyBytes = 4 << 20

// Handler serves the grunnlag API.
type Handler struct {
	logger  *slog.Logger
	service Service
	metrics *metrics.Metrics
	timeout time.Duration
}

// New creates a new grunnlag Handler.
func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		metrics: metrics,
		timeout: 30 * time.Second,
	}
}

// Register registers the grunnlag routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	grunnlagRouter := chi.NewRouter()
	grunnlagRouter.Use(middleware.RequestID)
	grunnlagRouter.Use(middleware.Recovery(h.logger))
	grunnlagRouter.Use(middleware.RequestContext)
	grunnlagRouter.Use(middleware.Logger(h.logger))
	grunnlagRouter.Use(chimw.Timeout(h.timeout))
	grunnlagRouter.Use(middleware.Latency(h.metrics))

	grunnlagRouter.Get("/sak/{sakId}", h.handleCurrentSnapshot)
	grunnlagRouter.Get("/sak/{sakId}/versjon/{versjon}", h.handleSnapshotAsOf)
	grunnlagRouter.Get("/sak/{sakId}/opplysning/{type}", h.handleFactOfType)
	grunnlagRouter.Get("/sak/{sakId}/persongalleri", h.handlePersongalleri)
	grunnlagRouter.Post("/sak/{sakId}/opplysninger", h.handleAppend)
	grunnlagRouter.Post("/person/saker", h.handleSakerForPerson)
	grunnlagRouter.Post("/behandling/{behandlingId}/kobling", h.handleKnyttBehandling)
	grunnlagRouter.Post("/behandling/{behandlingId}/laas", h.handleLaasBehandling)
	grunnlagRouter.Get("/behandling/{behandlingId}", h.handleSnapshotForBehandling)

	r.Mount("/api/grunnlag", grunnlagRouter)
}

type appendRequest struct {
	Opplysninger []models.NyOpplysning `json:"opplysninger"`
}

type appendResponse struct {
	SakID         domain.SakID `json:"sakId"`
	Hendelsenumre []int64      `json:"hendelsenumre"`
}

type sakerForPersonRequest struct {
	Fnr domain.Folkeregisteridentifikator `json:"fnr"`
}

type sakerForPersonResponse struct {
	Saker []models.SakOgRolle `json:"saker"`
}

type knyttBehandlingRequest struct {
	SakID domain.SakID `json:"sakId"`
}

func (h *Handler) handleAppend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sakID, ok := h.sakIDParam(w, r)
	if !ok {
		return
	}

	var req appendRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.Opplysninger) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "opplysninger must not be empty"))
		return
	}

	numre, err := h.service.AppendAll(ctx, sakID, req.Opplysninger)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to append opplysninger")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, appendResponse{SakID: sakID, Hendelsenumre: numre})
}

func (h *Handler) handleCurrentSnapshot(w http.ResponseWriter, r *http.Request) {
	sakID, ok := h.sakIDParam(w, r)
	if !ok {
		return
	}
	g, err := h.service.CurrentSnapshot(r.Context(), sakID)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to assemble grunnlag")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) handleSnapshotAsOf(w http.ResponseWriter, r *http.Request) {
	sakID, ok := h.sakIDParam(w, r)
	if !ok {
		return
	}
	versjon, err := strconv.ParseInt(chi.URLParam(r, "versjon"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "versjon must be an integer"))
		return
	}
	g, err := h.service.SnapshotAsOf(r.Context(), sakID, versjon)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to assemble grunnlag")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) handleFactOfType(w http.ResponseWriter, r *http.Request) {
	sakID, ok := h.sakIDParam(w, r)
	if !ok {
		return
	}
	typ := models.Opplysningstype(chi.URLParam(r, "type"))
	o, found, err := h.service.FactOfType(r.Context(), sakID, typ)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to read opplysning")
		return
	}
	if !found {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no opplysning of type "+string(typ)))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) handlePersongalleri(w http.ResponseWriter, r *http.Request) {
	sakID, ok := h.sakIDParam(w, r)
	if !ok {
		return
	}
	g, err := h.service.Persongalleri(r.Context(), sakID)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to read persongalleri")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g)
}

// handleSakerForPerson takes the fnr in the body so it stays out of access logs.
func (h *Handler) handleSakerForPerson(w http.ResponseWriter, r *http.Request) {
	var req sakerForPersonRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Fnr.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "fnr is required"))
		return
	}
	saker, err := h.service.SakerForPerson(r.Context(), req.Fnr)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to look up saker")
		return
	}
	if saker == nil {
		saker = []models.SakOgRolle{}
	}
	httputil.WriteJSON(w, http.StatusOK, sakerForPersonResponse{Saker: saker})
}

func (h *Handler) handleKnyttBehandling(w http.ResponseWriter, r *http.Request) {
	behandlingID, ok := h.behandlingIDParam(w, r)
	if !ok {
		return
	}
	var req knyttBehandlingRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.SakID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "sakId must be positive"))
		return
	}
	bv, err := h.service.KnyttBehandling(r.Context(), behandlingID, req.SakID)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to pin behandling")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bv)
}

func (h *Handler) handleLaasBehandling(w http.ResponseWriter, r *http.Request) {
	behandlingID, ok := h.behandlingIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.LaasBehandling(r.Context(), behandlingID); err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to lock behandling")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSnapshotForBehandling(w http.ResponseWriter, r *http.Request) {
	behandlingID, ok := h.behandlingIDParam(w, r)
	if !ok {
		return
	}
	g, err := h.service.SnapshotForBehandling(r.Context(), behandlingID)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to assemble grunnlag")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) sakIDParam(w http.ResponseWriter, r *http.Request) (domain.SakID, bool) {
	sakID, err := domain.ParseSakID(chi.URLParam(r, "sakId"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return sakID, true
}

func (h *Handler) behandlingIDParam(w http.ResponseWriter, r *http.Request) (domain.BehandlingID, bool) {
	id, err := domain.ParseBehandlingID(chi.URLParam(r, "behandlingId"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.BehandlingID{}, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	ctx := r.Context()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		h.logger.WarnContext(ctx, "invalid request body",
			"request_id", requestcontext.RequestID(ctx),
			"path", r.URL.Path,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

// writeServiceError passes client errors through and masks everything else.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	code := dErrors.CodeOf(err)
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeValidation,
		dErrors.CodeNotFound, dErrors.CodeConflict:
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"code", code,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
	case dErrors.CodeUnavailable, dErrors.CodeTimeout:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"code", code,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
	default:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
	}
}
