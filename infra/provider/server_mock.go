package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/transform"

	"github.com/kilianp07/roomload/config"
	"github.com/kilianp07/roomload/core/calendar"
	"github.com/kilianp07/roomload/infra/logger"
)

// ServerMock serves the timetable export interface from a Fixture.
type ServerMock struct {
	mu       sync.Mutex
	addr     string
	cfg      config.MockServerConfig
	fixture  *Fixture
	log      logger.Logger
	srv      *http.Server
	gatherer prometheus.Gatherer
	requests *prometheus.CounterVec
}

// NewServerMock creates a mock server using the default Prometheus registry.
func NewServerMock(cfg config.MockServerConfig, fx *Fixture) *ServerMock {
	return NewServerMockWithRegistry(cfg, fx, nil)
}

// NewServerMockWithRegistry registers the request counter on reg. When reg
// also implements prometheus.Gatherer it backs the /metrics endpoint.
func NewServerMockWithRegistry(cfg config.MockServerConfig, fx *Fixture, reg prometheus.Registerer) *ServerMock {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cfg.SetDefaults()
	if fx == nil {
		fx = &Fixture{}
	}
	log := logger.New("provider-mock")

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roomload_mock_requests_total",
		Help: "Requests served by the timetable mock",
	}, []string{"req_type", "code"})
	if err := reg.Register(requests); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if exist, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				requests = exist
			} else {
				log.Errorf("existing collector for roomload_mock_requests_total has wrong type %T", are.ExistingCollector)
			}
		}
	}
	gatherer, ok := reg.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}
	return &ServerMock{
		addr:     cfg.Address,
		cfg:      cfg,
		fixture:  fx,
		log:      log,
		gatherer: gatherer,
		requests: requests,
	}
}

// Handler returns the HTTP routes of the mock.
func (s *ServerMock) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("pong")); err != nil {
			s.log.Errorf("write pong: %v", err)
		}
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/", s.handleExport)
	r.Get("/cgi-bin/timetable_export.cgi", s.handleExport)
	return r
}

func (s *ServerMock) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reqType := q.Get("req_type")
	switch reqType {
	case "obj_list":
		s.respond(w, r, reqType, s.fixture.objList())
	case "rozklad":
		id := q.Get("OBJ_ID")
		if slices.Contains(s.cfg.FailRooms, id) {
			s.requests.WithLabelValues(reqType, "500").Inc()
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		s.respond(w, r, reqType, s.schedule(id, q.Get("begin_date"), q.Get("end_date")))
	default:
		s.requests.WithLabelValues("unknown", "400").Inc()
		http.Error(w, "unknown req_type", http.StatusBadRequest)
	}
}

// schedule returns the entries of room id inside [begin, end]. Entries whose
// date does not parse are always included.
func (s *ServerMock) schedule(id, begin, end string) rozkladResponse {
	var resp rozkladResponse
	resp.Export.Items = []rozItem{}
	rng, rangeErr := calendar.ParseRange(begin, end)
	for _, e := range s.fixture.Schedules[id] {
		if rangeErr == nil {
			if d, err := calendar.ParseDate(e.Date); err == nil && (d.Before(rng.Begin) || d.After(rng.End)) {
				continue
			}
		}
		resp.Export.Items = append(resp.Export.Items, fromEntry(e.model()))
	}
	return resp
}

func (s *ServerMock) respond(w http.ResponseWriter, r *http.Request, reqType string, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		s.requests.WithLabelValues(reqType, "500").Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	charset := r.URL.Query().Get("coding_mode")
	if charset == "" {
		charset = s.cfg.Encoding
	}
	enc, err := lookupEncoding(charset)
	if err != nil {
		s.requests.WithLabelValues(reqType, "400").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	encoded, _, err := transform.Bytes(enc.NewEncoder(), data)
	if err != nil {
		s.requests.WithLabelValues(reqType, "500").Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset="+strings.ToLower(charset))
	s.requests.WithLabelValues(reqType, "200").Inc()
	if s.cfg.Gzip && strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer func() {
			if err := gz.Close(); err != nil {
				s.log.Errorf("close gzip: %v", err)
			}
		}()
		if _, err := gz.Write(encoded); err != nil {
			s.log.Errorf("write response: %v", err)
		}
		return
	}
	if _, err := w.Write(encoded); err != nil {
		s.log.Errorf("write response: %v", err)
	}
}

// Addr returns the listening address once Start has been called.
func (s *ServerMock) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start runs the HTTP server until the context is canceled.
func (s *ServerMock) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.srv = srv
	s.mu.Unlock()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown server: %v", err)
		}
		cancel()
	}()
	s.log.Infof("timetable mock listening on %s (%d rooms)", ln.Addr(), len(s.fixture.Rooms))
	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
