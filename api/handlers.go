package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/faqmatch/matching"
)

type chatRequest struct {
	Message *string `json:"message"`
}

type chatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type infoResponse struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
}

type healthResponse struct {
	Status     string `json:"status"`
	FAQEntries int    `json:"faq_entries"`
}

type searchMatch struct {
	ID              string  `json:"id"`
	Question        string  `json:"question"`
	Answer          string  `json:"answer"`
	SimilarityScore float64 `json:"similarity_score"`
}

type searchResponse struct {
	Query        string        `json:"query"`
	Matches      []searchMatch `json:"matches"`
	TotalMatches int           `json:"total_matches"`
}

type thresholdRequest struct {
	Threshold *float64 `json:"threshold"`
}

type thresholdResponse struct {
	Threshold float64 `json:"threshold"`
}

type reloadResponse struct {
	Status string         `json:"status"`
	Stats  matching.Stats `json:"stats"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		Service:   s.cfg.ServiceName,
		Version:   s.cfg.ServiceVersion,
		Status:    "running",
		Endpoints: []string{"/chat", "/health", "/stats", "/search"},
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	query, ok := s.readMessage(w, r, "Message cannot be empty")
	if !ok {
		return
	}
	if err := s.ensureReady(r.Context()); err != nil {
		writeUnavailable(w, err)
		return
	}

	resp, err := s.service.ProcessQuery(query)
	if err != nil {
		s.writeServiceError(w, r, err, "Failed to process your question. Please try again.")
		return
	}

	s.logger.Info("chat interaction",
		"requestId", RequestID(r.Context()),
		"question", query,
		"answerLength", utf8.RuneCountInString(resp.Answer),
		"sources", resp.Sources,
		"similarityScore", resp.SimilarityScore,
		"hasMatch", resp.Matched)
	if s.recorder != nil {
		s.recorder.Record(query, resp)
	}

	writeJSON(w, http.StatusOK, chatResponse{Answer: resp.Answer, Sources: resp.Sources})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, ok := s.readMessage(w, r, "Search query cannot be empty")
	if !ok {
		return
	}
	if err := s.ensureReady(r.Context()); err != nil {
		writeUnavailable(w, err)
		return
	}

	results, err := s.service.TopMatches(query, searchLimit)
	if err != nil {
		s.writeServiceError(w, r, err, "Failed to search FAQ entries")
		return
	}

	matches := make([]searchMatch, len(results))
	for i, m := range results {
		matches[i] = searchMatch{
			ID:              m.Entry.ID,
			Question:        m.Entry.Question,
			Answer:          m.Entry.Answer,
			SimilarityScore: m.Score,
		}
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Matches: matches, TotalMatches: len(matches)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.ensureReady(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "healthy",
		FAQEntries: s.service.Stats().TotalEntries,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	// stats are reported even when initialization fails
	_ = s.ensureReady(r.Context())
	writeJSON(w, http.StatusOK, s.service.Stats())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Reload(r.Context()); err != nil {
		s.logger.Error("reload failed", "requestId", RequestID(r.Context()), "err", err)
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Reload failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Status: "reloaded", Stats: s.service.Stats()})
}

func (s *Server) handleThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := s.decodeJSON(w, r, &req); err != nil || req.Threshold == nil {
		writeDecodeError(w, err, "Body must be {\"threshold\": number}")
		return
	}
	if err := s.service.UpdateThreshold(*req.Threshold); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, thresholdResponse{Threshold: s.service.Threshold()})
}

// readMessage decodes a {"message": ...} body and returns the trimmed
// message. It writes the error response itself and reports false on failure.
func (s *Server) readMessage(w http.ResponseWriter, r *http.Request, emptyDetail string) (string, bool) {
	var req chatRequest
	if err := s.decodeJSON(w, r, &req); err != nil || req.Message == nil {
		writeDecodeError(w, err, "Body must be {\"message\": string}")
		return "", false
	}
	if n := utf8.RuneCountInString(*req.Message); n > s.cfg.MaxMessageLength {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("Message is %d characters long, the limit is %d", n, s.cfg.MaxMessageLength))
		return "", false
	}
	query := strings.TrimSpace(*req.Message)
	if query == "" {
		writeError(w, http.StatusBadRequest, emptyDetail)
		return "", false
	}
	return query, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, detail string) {
	if errors.Is(err, matching.ErrNotReady) {
		writeUnavailable(w, err)
		return
	}
	s.logger.Error("FAQ service error", "requestId", RequestID(r.Context()), "err", err)
	writeError(w, http.StatusInternalServerError, detail)
}

func writeUnavailable(w http.ResponseWriter, err error) {
	writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("Service initialization failed: %v", err))
}

// bodyLimit bounds request bodies: every character of the longest allowed
// message written as a \uXXXX surrogate pair, plus room for the envelope.
func (s *Server) bodyLimit() int64 {
	return int64(s.cfg.MaxMessageLength)*12 + 1024
}

// decodeJSON reads at most bodyLimit bytes of r into target.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, s.bodyLimit())).Decode(target)
}

// writeDecodeError answers a body that could not be decoded.
func writeDecodeError(w http.ResponseWriter, err error, detail string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	writeError(w, http.StatusUnprocessableEntity, detail)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
