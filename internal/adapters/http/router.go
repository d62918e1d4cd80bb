package httpadapter

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/oblicore/oblicore/internal/core/domain"
	"github.com/oblicore/oblicore/internal/core/ports"
)

// maxUploadBytes bounds one multipart upload; regulatory PDFs run tens of
// megabytes at most.
const maxUploadBytes = 64 << 20

type Router struct {
	ingest       ports.DocumentIngestor
	docs         ports.DocumentRepository
	obligations  ports.ObligationRepository
	queue        ports.MessageQueue
	dates        ports.DateExtractor
	deliverables ports.DeliverableGenerator
	cacheAdmin   ports.CacheAdmin
}

func NewRouter(
	ingest ports.DocumentIngestor,
	docs ports.DocumentRepository,
	obligations ports.ObligationRepository,
	queue ports.MessageQueue,
	dates ports.DateExtractor,
	deliverables ports.DeliverableGenerator,
	cacheAdmin ports.CacheAdmin,
) *Router {
	return &Router{
		ingest:       ingest,
		docs:         docs,
		obligations:  obligations,
		queue:        queue,
		dates:        dates,
		deliverables: deliverables,
		cacheAdmin:   cacheAdmin,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.documentSubroute)
	mux.HandleFunc("/v1/archive", rt.listArchive)
	mux.HandleFunc("/v1/stats", rt.platformStats)
	return loggingMiddleware(mux)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read upload: " + err.Error()})
		return
	}

	hash := sha256.Sum256(content)
	doc, duplicate, err := rt.ingest.Upload(r.Context(), domain.Upload{
		Filename:     fileHeader.Filename,
		Title:        r.FormValue("title"),
		Source:       r.FormValue("source"),
		DocumentType: r.FormValue("document_type"),
		Hash:         hex.EncodeToString(hash[:]),
		Content:      content,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusAccepted
	if duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, uploadResponse{Document: doc, Duplicate: duplicate})
}

type uploadResponse struct {
	Document  *domain.Document `json:"document"`
	Duplicate bool             `json:"duplicate"`
}

// documentSubroute dispatches /v1/documents/{id}[/{action}].
func (rt *Router) documentSubroute(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	switch action {
	case "":
		rt.getDocument(w, r, id)
	case "obligations":
		rt.listObligations(w, r, id)
	case "process":
		rt.triggerProcessing(w, r, id)
	case "clear-cache":
		rt.clearCache(w, r, id)
	case "dates":
		rt.extractDates(w, r, id)
	case "rtm":
		rt.downloadDeliverable(w, r, id, "rtm")
	case "funcspec":
		rt.downloadDeliverable(w, r, id, "funcspec")
	case "archive":
		rt.setArchived(w, r, id)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown resource"})
	}
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) listObligations(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	obligations, err := rt.obligations.ListByDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if obligations == nil {
		obligations = []domain.Obligation{}
	}
	writeJSON(w, http.StatusOK, obligations)
}

func (rt *Router) triggerProcessing(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if _, err := rt.docs.GetByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := rt.queue.PublishDocumentUploaded(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (rt *Router) clearCache(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if _, err := rt.docs.GetByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := rt.cacheAdmin.ClearDocument(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (rt *Router) extractDates(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	dates, err := rt.dates.ExtractDates(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if dates == nil {
		dates = []domain.CommencementDate{}
	}
	writeJSON(w, http.StatusOK, dates)
}

func (rt *Router) downloadDeliverable(w http.ResponseWriter, r *http.Request, id, kind string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var data []byte
	var err error
	switch kind {
	case "rtm":
		data, err = rt.deliverables.GenerateRTM(r.Context(), id)
	default:
		data, err = rt.deliverables.GenerateFunctionalSpec(r.Context(), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind+"_"+id+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) setArchived(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Archived *bool `json:"archived"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Archived == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must carry {\"archived\": true|false}"})
		return
	}
	if _, err := rt.docs.GetByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := rt.docs.SetArchived(r.Context(), id, *req.Archived); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"archived": *req.Archived})
}

func (rt *Router) listArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	docs, err := rt.docs.ListArchived(r.Context(), r.URL.Query().Get("search"), r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (rt *Router) platformStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	stats, err := rt.docs.AggregateStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
