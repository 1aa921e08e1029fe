package word2quiz

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/word2quiz/horosafe"
	"github.com/hazyhaar/word2quiz/quiz"
	"github.com/hazyhaar/word2quiz/shield"
)

// Handler returns the HTTP API. Responses carry the shield security headers.
//
//	GET    /health
//	POST   /api/parse        multipart "file" (+ expected_questions, normalize_fontsize, save)
//	POST   /api/classify     JSON {"paragraphs": [...], "normalize_fontsize": N}
//	GET    /api/runs         ?limit=N
//	GET    /api/runs/{id}
//	DELETE /api/runs/{id}
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(shield.DefaultStack()...)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/classify", s.handleClassify)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
		r.Delete("/runs/{id}", s.handleDeleteRun)
	})
	return r
}

func (s *Service) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer f.Close()
	data, err := horosafe.LimitedReadAll(f, s.cfg.MaxFileSize)
	if errors.Is(err, horosafe.ErrTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := quiz.Options{
		ExpectedQuestions: formInt(r, "expected_questions"),
		NormalizeFontSize: formInt(r, "normalize_fontsize"),
	}

	if save, _ := strconv.ParseBool(r.FormValue("save")); save {
		run, err := s.SaveBytes(r.Context(), header.Filename, data, opts)
		if err != nil {
			writeParseError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, run)
		return
	}

	res, err := s.ParseBytes(r.Context(), header.Filename, data, opts)
	if err != nil {
		writeParseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type classifyBody struct {
	Paragraphs        []string `json:"paragraphs"`
	NormalizeFontSize int      `json:"normalize_fontsize"`
}

func (s *Service) handleClassify(w http.ResponseWriter, r *http.Request) {
	var body classifyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.NormalizeFontSize < 0 {
		writeError(w, http.StatusBadRequest, errors.New("normalize_fontsize must not be negative"))
		return
	}
	lines := s.classify(slices.Values(body.Paragraphs), body.NormalizeFontSize)
	writeJSON(w, http.StatusOK, map[string]any{"lines": lines})
}

func (s *Service) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.Runs(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Service) handleRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, errors.New("run not found"))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Service) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	ok, err := s.DeleteRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("run not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeParseError maps validation failures to 422 with their kind.
func writeParseError(w http.ResponseWriter, err error) {
	var verr *quiz.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    err.Error(),
			"kind":     verr.Kind.Error(),
			"section":  verr.Section,
			"question": verr.Question,
		})
		return
	}
	writeError(w, http.StatusBadRequest, err)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func formInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.FormValue(key))
	return v
}
