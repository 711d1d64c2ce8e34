// Package stub implémente en mémoire le contrat HTTP du service de transcription
// (transcribe, refine, téléchargement des sous-titres). Il sert aux tests et au
// développement local via cmd/reelstub.
package stub

import (
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/patrickprogramme/reelscribe/internal/fsutil"
	"github.com/patrickprogramme/reelscribe/internal/platform"
	"github.com/patrickprogramme/reelscribe/internal/subtitles"
	"github.com/patrickprogramme/reelscribe/pkg/model"
)

// Chemins du contrat
const (
	PathTranscribe   = "/api/transcribe"
	PathRefine       = "/api/refine"
	PathSubtitlesSRT = "/api/subtitles.srt"
	PathSubtitlesVTT = "/api/subtitles.vtt"
)

type failure struct {
	code int
	body string
}

type cached struct {
	segments []model.Segment
	vtt      string
}

// Service est le faux service. Toutes les méthodes sont sûres en concurrence.
type Service struct {
	mu sync.Mutex

	transcript string
	segments   []model.Segment
	meta       model.Meta
	cache      bool
	legacy     bool // refine répond avec "transcript" au lieu de "cleaned_transcript"

	transcribeFail *failure
	refineFail     *failure

	gate    chan struct{}
	calls   map[string]int
	ids     []string
	lastURL string
	store   map[string]cached

	logger *slog.Logger
}

// New construit un Service avec un résultat de démonstration.
func New() *Service {
	return &Service{
		transcript: "so this is the demo reel um showing how the transcription works",
		segments: []model.Segment{
			{Start: 0, End: 2.4, Text: "so this is the demo reel"},
			{Start: 2.4, End: 5.25, Text: "um showing how the transcription works"},
		},
		meta:   model.Meta{"source_language": "en", "model": "whisper-small"},
		cache:  true,
		calls:  make(map[string]int),
		store:  make(map[string]cached),
		logger: slog.Default().With("component", "stub"),
	}
}

// SetResult remplace le résultat renvoyé par /api/transcribe.
func (s *Service) SetResult(transcript string, segments []model.Segment, meta model.Meta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = transcript
	s.segments = slices.Clone(segments)
	s.meta = maps.Clone(meta)
}

// SetCache active/désactive la mise en cache (et donc cache_key + téléchargements).
func (s *Service) SetCache(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = on
}

// SetLegacyRefine : refine répond {"transcript": ...} (ancien champ).
func (s *Service) SetLegacyRefine(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacy = on
}

// FailTranscribe force une réponse d'erreur ; code 0 rétablit le succès.
func (s *Service) FailTranscribe(code int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcribeFail = newFailure(code, body)
}

// FailRefine force une réponse d'erreur ; code 0 rétablit le succès.
func (s *Service) FailRefine(code int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refineFail = newFailure(code, body)
}

func newFailure(code int, body string) *failure {
	if code == 0 {
		return nil
	}
	return &failure{code: code, body: body}
}

// Hold bloque les requêtes POST jusqu'à l'appel de release.
func (s *Service) Hold() (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	s.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gate == gate {
				s.gate = nil
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Calls retourne le nombre de requêtes reçues sur path.
func (s *Service) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// RequestIDs retourne les identifiants de requête vus (dans l'ordre).
func (s *Service) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids)
}

// LastURL retourne la dernière URL soumise à /api/transcribe.
func (s *Service) LastURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastURL
}

// Handler construit le routeur chi.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Post(PathTranscribe, s.handleTranscribe)
	r.Post(PathRefine, s.handleRefine)
	r.Get(PathSubtitlesSRT, s.handleDownload(model.FormatSRT))
	r.Get(PathSubtitlesVTT, s.handleDownload(model.FormatVTT))
	return r
}

// record compte les appels et journalise chaque requête.
func (s *Service) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := middleware.GetReqID(r.Context())
		s.mu.Lock()
		s.calls[r.URL.Path]++
		s.ids = append(s.ids, rid)
		s.mu.Unlock()

		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "request_id", rid, "elapsed", time.Since(start))
	})
}

// wait bloque tant que Hold est actif (ou que le client abandonne).
func (s *Service) wait(r *http.Request) bool {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate == nil {
		return true
	}
	select {
	case <-gate:
		return true
	case <-r.Context().Done():
		return false
	}
}

type transcribeBody struct {
	Transcript string          `json:"transcript"`
	Subtitles  []model.Segment `json:"subtitles"`
	Meta       model.Meta      `json:"meta"`
	VTT        string          `json:"vtt"`
}

func (s *Service) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}
	if !s.wait(r) {
		return
	}

	s.mu.Lock()
	s.lastURL = req.URL
	if f := s.transcribeFail; f != nil {
		s.mu.Unlock()
		writeFailure(w, f)
		return
	}
	body := transcribeBody{
		Transcript: s.transcript,
		Subtitles:  slices.Clone(s.segments),
		Meta:       maps.Clone(s.meta),
	}
	if body.Meta == nil {
		body.Meta = model.Meta{}
	}
	if _, ok := body.Meta["platform"]; !ok {
		if info := platform.Detect(req.URL); info.Known() {
			body.Meta["platform"] = info.Name
		}
	}
	vtt, err := ToVTT(body.Subtitles)
	if err != nil {
		s.mu.Unlock()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	body.VTT = vtt
	if s.cache {
		body.Meta["cache_key"] = uuid.NewString()
		s.store[req.URL] = cached{segments: body.Subtitles, vtt: vtt}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, body)
}

func (s *Service) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !s.wait(r) {
		return
	}

	s.mu.Lock()
	f, legacy := s.refineFail, s.legacy
	s.mu.Unlock()
	if f != nil {
		writeFailure(w, f)
		return
	}

	cleaned := Clean(req.Text)
	if legacy {
		writeJSON(w, http.StatusOK, map[string]string{"transcript": cleaned})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"cleaned_transcript": cleaned})
}

func (s *Service) handleDownload(f model.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := strings.TrimSpace(r.URL.Query().Get("url"))
		s.mu.Lock()
		c, ok := s.store[u]
		s.mu.Unlock()
		if !ok {
			http.Error(w, "no cached transcription for this url", http.StatusNotFound)
			return
		}

		var doc string
		switch f {
		case model.FormatSRT:
			srt, err := subtitles.ToSRT(c.segments)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			doc = srt
			w.Header().Set("Content-Type", "application/x-subrip; charset=utf-8")
		default:
			doc = c.vtt
			w.Header().Set("Content-Type", "text/vtt; charset=utf-8")
		}
		_, _ = w.Write([]byte(doc))
	}
}

func writeFailure(w http.ResponseWriter, f *failure) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(f.code)
	_, _ = w.Write([]byte(f.body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var fillers = regexp.MustCompile(`(?i)\b(um|uh|erm)\b[,]?\s*`)

// Clean est la "correction" factice : retire les hésitations, normalise les
// espaces, met une majuscule et un point final.
func Clean(text string) string {
	t := fillers.ReplaceAllString(text, "")
	t = strings.Join(strings.Fields(t), " ")
	if t == "" {
		return ""
	}
	t = fsutil.CapitalizeFirst(t)
	if !strings.HasSuffix(t, ".") && !strings.HasSuffix(t, "!") && !strings.HasSuffix(t, "?") {
		t += "."
	}
	return t
}
