// Package server exposes the issuance pipeline over HTTP: a CSV upload
// surface for batch minting, a metadata hashing endpoint, the verification
// lookup surface, and prometheus metrics.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vaibhaw-/CertR/internal/certr/chain"
	"github.com/vaibhaw-/CertR/internal/certr/index"
	"github.com/vaibhaw-/CertR/internal/certr/issue"
	"github.com/vaibhaw-/CertR/internal/certr/logger"
	"github.com/vaibhaw-/CertR/internal/certr/metadata"
	"github.com/vaibhaw-/CertR/internal/certr/metrics"
	"github.com/vaibhaw-/CertR/internal/certr/parser"
	"github.com/vaibhaw-/CertR/internal/certr/qr"
	"github.com/vaibhaw-/CertR/internal/certr/resolve"
)

// Options wires the server's collaborators. Orchestrator may be nil when no
// chain deployment is configured; minting endpoints then answer 503 while
// lookups keep working.
type Options struct {
	Orchestrator  *issue.Orchestrator
	Store         index.Store
	Metrics       *metrics.Registry
	FrontendURL   string
	LocatorPrefix string
}

type Server struct {
	opts Options
}

func New(opts Options) *Server {
	return &Server{opts: opts}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/batch-mint", s.handleBatchMint)
	mux.HandleFunc("POST /api/upload-metadata", s.handleUploadMetadata)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/certificates", s.handleList)
	if s.opts.Metrics != nil {
		mux.Handle("GET /metrics", s.opts.Metrics.Handler())
	}
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Errorw("encode response", "err", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// issueStatus maps pipeline errors onto HTTP statuses so callers can tell
// correctable input from terminal and retryable failures apart.
func issueStatus(err error) int {
	var verr *parser.ValidationError
	var inc *issue.IndexInconsistencyError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, parser.ErrBatchTooLarge),
		errors.Is(err, parser.ErrEmptyBatch):
		return http.StatusBadRequest
	case errors.Is(err, chain.ErrDuplicateMetadata):
		return http.StatusConflict
	case errors.Is(err, chain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.As(err, &inc):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleBatchMint(w http.ResponseWriter, r *http.Request) {
	log := logger.L()
	if s.opts.Orchestrator == nil {
		writeError(w, http.StatusServiceUnavailable, "chain not configured")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	reqs, err := parser.ParseCSV(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.opts.Orchestrator.IssueBatch(r.Context(), reqs)
	if err != nil {
		log.Errorw("batch mint failed", "rows", len(reqs), "err", err.Error())
		writeError(w, issueStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"records": records,
	})
}

type uploadMetadataRequest struct {
	RecipientAddress string `json:"recipient_address"`
	RecipientName    string `json:"recipient_name"`
	Program          string `json:"program"`
	IssueDate        string `json:"issue_date"`
	CertificateID    string `json:"certificate_id"`
}

// handleUploadMetadata hashes one metadata payload without minting it. The
// response carries the locator, the digest, and the metadata with its image
// swapped for a QR of the verification link.
func (s *Server) handleUploadMetadata(w http.ResponseWriter, r *http.Request) {
	var req uploadMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.RecipientAddress == "" || req.RecipientName == "" || req.Program == "" || req.IssueDate == "" {
		writeError(w, http.StatusBadRequest, "recipient_address, recipient_name, program and issue_date are required")
		return
	}
	certID := req.CertificateID
	if certID == "" {
		certID = metadata.NewCertificateID()
	}

	m := metadata.Build(req.RecipientAddress, req.RecipientName, req.Program, req.IssueDate, certID)
	digest, err := metadata.Digest(m)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	qrURL, err := qr.DataURL(s.opts.FrontendURL + "/verify?certId=" + certID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// The digest stays bound to the placeholder form; the QR replaces the
	// image only in the returned copy.
	m.Image = qrURL

	writeJSON(w, http.StatusOK, map[string]any{
		"ipfsUri":      metadata.Locator(s.opts.LocatorPrefix, certID),
		"metadataHash": digest.Hex(),
		"metadata":     m,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	kind := resolve.KeyKind(r.URL.Query().Get("type"))
	value := r.URL.Query().Get("value")

	if kind == "" {
		detected, err := resolve.DetectKind(value)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind = detected
	}

	tokenID, err := resolve.Resolve(r.Context(), s.opts.Store, kind, value)
	switch {
	case errors.Is(err, index.ErrNotFound):
		writeError(w, http.StatusNotFound, "Certificate not found")
		return
	case errors.Is(err, resolve.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"tokenId": tokenID})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.opts.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []index.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":        len(records),
		"certificates": records,
	})
}
