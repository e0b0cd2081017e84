package dashboard

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/trainlog/trainlog/ingest"
)

// Server exposes run tables over HTTP: HTML pages for browsing and a JSON
// API the pages' charts fetch from.
type Server struct {
	store         *Store
	router        *chi.Mux
	addr          string
	bucketWidth   int64
	successReward float64
}

// NewServer builds the router over the given store.
func NewServer(store *Store, addr string, bucketWidth int64, successReward float64) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		store:         store,
		router:        router,
		addr:          addr,
		bucketWidth:   bucketWidth,
		successReward: successReward,
	}

	router.Get("/", s.indexPage)
	router.Get("/runs/{run}", s.runPage)
	router.Get("/api/runs", s.listRuns)
	router.Route("/api/runs/{run}", func(r chi.Router) {
		r.Get("/summary", s.summary)
		r.Get("/records", s.records)
		r.Get("/best", s.best)
		r.Get("/buckets", s.buckets)
		r.Get("/params", s.params)
	})
	return s
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until the listener fails.
func (s *Server) Start() error {
	logrus.Infof("dashboard listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.router)
}

// recordView is the JSON rendering of one record.
type recordView struct {
	Step      int64   `json:"step"`
	Episode   string  `json:"episode"`
	Decision  string  `json:"decision"`
	Eps       float64 `json:"eps"`
	LR        float64 `json:"lr"`
	Ret       float64 `json:"ret"`
	LastCrash int64   `json:"last_crash"`
	StepTime  float64 `json:"t"`
	SF        float64 `json:"sf"`
	Found     bool    `json:"found"`
	Reward    float64 `json:"reward"`
}

func viewRecords(records []ingest.Record) []recordView {
	out := make([]recordView, 0, len(records))
	for _, r := range records {
		out = append(out, recordView{
			Step:      r.Step,
			Episode:   r.Episode,
			Decision:  r.Decision,
			Eps:       r.Eps,
			LR:        r.LearningRate,
			Ret:       r.Return,
			LastCrash: r.LastCrash,
			StepTime:  r.StepTime,
			SF:        r.SF,
			Found:     r.Found,
			Reward:    r.Reward,
		})
	}
	return out
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.Runs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []string{}
	}
	writeJSON(w, runs)
}

// tables resolves the run named in the URL, mapping a missing run to 404.
func (s *Server) tables(w http.ResponseWriter, r *http.Request) (*Tables, bool) {
	run := chi.URLParam(r, "run")
	t, err := s.store.Tables(run)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, errors.New("run not found: "+run))
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}
		return nil, false
	}
	return t, true
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tables(w, r)
	if !ok {
		return
	}
	writeJSON(w, Summarize(t.Records, t.Best, s.successReward))
}

func (s *Server) records(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tables(w, r)
	if !ok {
		return
	}
	writeJSON(w, viewRecords(t.Records))
}

func (s *Server) best(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tables(w, r)
	if !ok {
		return
	}
	best := t.Best
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("top must be a non-negative integer"))
			return
		}
		best = TopByReturn(best, n)
	}
	writeJSON(w, viewRecords(best))
}

func (s *Server) buckets(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tables(w, r)
	if !ok {
		return
	}
	writeJSON(w, Bucketize(t.Records, s.bucketWidth, s.successReward))
}

func (s *Server) params(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tables(w, r)
	if !ok {
		return
	}
	type paramView struct {
		Parameter string `json:"parameter"`
		Value     string `json:"value"`
	}
	out := make([]paramView, 0, len(t.Params))
	for _, p := range t.Params {
		out = append(out, paramView{Parameter: p.Name, Value: p.Value})
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
