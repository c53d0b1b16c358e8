package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pep299/american-standard/internal/logging"
	"github.com/pep299/american-standard/internal/model"
	"github.com/pep299/american-standard/internal/rss"
	"github.com/pep299/american-standard/internal/service"
)

const (
	msgEditionNotFound = "Edition not found"
	msgArticleNotFound = "Article not found"
)

// generateHandler runs generation. The shared secret is waived for browser
// requests from a trusted origin.
func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	if !s.fromTrustedOrigin(r) && !s.hasSecret(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.generate(w, r)
}

// generateGetHandler serves the unauthenticated health check, otherwise a
// bearer-authorized manual trigger
func (s *Server) generateGetHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("health") == "true" {
		writeJSON(w, http.StatusOK, s.health())
		return
	}
	if !s.hasBearer(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.generate(w, r)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	result := s.editions.Generate(r.Context(), force)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

func (s *Server) regenerateReactionsHandler(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" && !model.ValidDate(date) {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	result, err := s.editions.RegenerateReactions(r.Context(), date)
	switch {
	case errors.Is(err, service.ErrEditionNotFound):
		writeError(w, http.StatusNotFound, "No edition found")
	case err != nil:
		logging.For(r.Context(), s.logger).Error("regenerating reactions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) todayHandler(w http.ResponseWriter, r *http.Request) {
	edition := s.repo.GetTodayEdition(r.Context())
	if edition == nil {
		writeError(w, http.StatusNotFound, msgEditionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, edition)
}

func (s *Server) editionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.repo.GetEditionsSummary(r.Context()))
}

func (s *Server) editionHandler(w http.ResponseWriter, r *http.Request) {
	edition := s.repo.GetEdition(r.Context(), mux.Vars(r)["date"])
	if edition == nil {
		writeError(w, http.StatusNotFound, msgEditionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, edition)
}

func (s *Server) articleHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	edition, article := s.repo.GetArticle(r.Context(), vars["date"], vars["articleId"])
	if edition == nil {
		writeError(w, http.StatusNotFound, msgEditionNotFound)
		return
	}
	if article == nil {
		writeError(w, http.StatusNotFound, msgArticleNotFound)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) deleteEditionHandler(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if !s.repo.EditionExists(r.Context(), date) || !s.repo.DeleteEdition(r.Context(), date) {
		writeError(w, http.StatusNotFound, "Edition not found or failed to delete")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Edition %s deleted", date),
	})
}

func (s *Server) deleteArticleHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	date, articleID := vars["date"], vars["articleId"]
	if !s.repo.DeleteArticle(r.Context(), date, articleID) {
		writeError(w, http.StatusNotFound, "Article not found or failed to delete")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Article %s deleted from %s", articleID, date),
	})
}

// feedHandler renders the latest edition as RSS 2.0
func (s *Server) feedHandler(w http.ResponseWriter, r *http.Request) {
	edition := s.repo.GetLatestEdition(r.Context())
	if edition == nil {
		writeError(w, http.StatusNotFound, msgEditionNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if err := rss.Encode(w, rss.FromEdition(edition, s.config.SiteURL)); err != nil {
		logging.For(r.Context(), s.logger).Error("encoding feed", zap.String("date", edition.Date), zap.Error(err))
	}
}
