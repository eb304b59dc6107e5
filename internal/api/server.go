package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/xet-labs/xet-composer/internal/domain"
	"github.com/xet-labs/xet-composer/internal/domain/config"
	"github.com/xet-labs/xet-composer/internal/usecase"
)

// Server exposes the composition pipeline over HTTP. One deployment request
// maps to exactly one pipeline run; the server never retries on behalf of
// the caller.
type Server struct {
	cfg      *config.RuntimeConfig
	compose  *usecase.ComposeDeployment
	list     *usecase.ListTemplates
	log      *slog.Logger
	handler  http.Handler
	shutdown time.Duration
}

// NewServer creates the HTTP server.
func NewServer(
	cfg *config.RuntimeConfig,
	compose *usecase.ComposeDeployment,
	list *usecase.ListTemplates,
	log *slog.Logger,
) *Server {
	s := &Server{
		cfg:      cfg,
		compose:  compose,
		list:     list,
		log:      log.With("component", "APIServer"),
		shutdown: 10 * time.Second,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/deploy", s.handleDeploy)
	mux.HandleFunc("GET /api/templates", s.handleTemplates)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = c.Handler(mux)
	return s
}

// Handler returns the routed handler, CORS included. Exposed for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api server listening", "addr", s.cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown api server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	log := s.log.With("request_id", requestID)

	var req DeployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, DeployResponse{
			Success: false,
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	if err := ValidateRequestor(req.Requestor); err != nil {
		log.Info("deploy request rejected", "reason", err)
		writeJSON(w, http.StatusForbidden, DeployResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	log.Info("deploy request accepted",
		"contract", req.Contract,
		"requestor", req.Requestor.LegalName,
		"dry_run", req.DryRun)

	result, err := s.compose.Execute(r.Context(), usecase.ComposeParams{
		TemplateID: req.Contract,
		Parameters: req.Params,
		DryRun:     req.DryRun,
	})
	if err != nil {
		status, resp := errorResponse(err)
		log.Warn("deploy request failed", "status", status, "error", err)
		writeJSON(w, status, resp)
		return
	}

	resp := DeployResponse{
		Success: true,
		Message: result.Message,
	}
	if result.Result != nil {
		resp.ContractAddress = result.Result.Address.Hex()
		resp.TxHash = result.Result.TxHash.Hex()
		resp.ABI = result.Result.ABI
	} else if result.Artifact != nil {
		resp.ABI = result.Artifact.RawABI
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	descriptors, err := s.list.Run(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, DeployResponse{Success: false, Message: "failed to list templates"})
		return
	}
	infos := make([]TemplateInfo, 0, len(descriptors))
	for _, d := range descriptors {
		infos = append(infos, TemplateInfo{
			ID:          d.ID,
			Contract:    d.ContractName,
			Description: d.Description,
			Params:      d.ParamNames(),
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse maps a pipeline error to a status code and envelope.
// Validation failures name the offending field; compiler and network
// failures report a category without leaking tool internals to callers.
func errorResponse(err error) (int, DeployResponse) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, DeployResponse{
			Success: false,
			Message: verr.Error(),
			Field:   verr.Field,
			Rule:    verr.Rule,
		}
	}

	if errors.Is(err, domain.ErrTemplateNotFound) {
		return http.StatusNotFound, DeployResponse{Success: false, Message: err.Error()}
	}

	var rerr *domain.RenderError
	if errors.As(err, &rerr) {
		return http.StatusUnprocessableEntity, DeployResponse{Success: false, Message: rerr.Error()}
	}

	var cerr *domain.CompileError
	if errors.As(err, &cerr) {
		msg := "contract compilation failed"
		if cerr.Timeout {
			msg = "contract compilation timed out"
		}
		return http.StatusBadGateway, DeployResponse{Success: false, Message: msg}
	}

	var serr *domain.SigningError
	if errors.As(err, &serr) {
		return http.StatusServiceUnavailable, DeployResponse{Success: false, Message: "deployment signer unavailable"}
	}

	var berr *domain.BroadcastError
	var terr *domain.ConfirmationTimeoutError
	if errors.As(err, &berr) || errors.As(err, &terr) {
		return http.StatusBadGateway, DeployResponse{Success: false, Message: "deployment transaction failed"}
	}

	return http.StatusInternalServerError, DeployResponse{Success: false, Message: "internal error"}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
