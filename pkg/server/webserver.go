package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zhafed/richie/pkg/common"
	"github.com/zhafed/richie/pkg/i18n"
	"github.com/zhafed/richie/pkg/index"
	"github.com/zhafed/richie/pkg/storage"
	"github.com/zhafed/richie/pkg/tracking"
	"github.com/zhafed/richie/pkg/types"
)

var (
	noSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_searches_total",
		Help: "The total number of processed course searches",
	})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_search_cache_hits_total",
		Help: "The total number of searches served from cache",
	})
	rejectedQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_rejected_queries_total",
		Help: "The total number of queries rejected as malformed",
	})
)

type WebServer struct {
	Index         *index.CourseIndex
	Db            *storage.DiskStorage
	Cache         *Cache
	Tracker       tracking.Tracking
	Lookup        i18n.Lookup
	CacheTTL      time.Duration
	ListenAddress string
}

func setSearchHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, stale-while-revalidate=120")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Age", "0")
}

func (ws *WebServer) Search(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	sr, err := types.QueryFromRequest(r)
	if err != nil {
		rejectedQueries.Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	noSearches.Inc()

	if ws.Tracker != nil {
		// Arguments are evaluated here, so the event never touches the
		// request after the handler returns.
		go ws.Tracker.TrackSession(sessionId, tracking.SessionInfoFromRequest(r))
	}

	cacheKey := "query:" + r.URL.RawQuery
	if ws.Cache != nil {
		var cached SearchResponse
		if err := ws.Cache.Get(cacheKey, &cached); err == nil {
			cacheHits.Inc()
			setSearchHeaders(w)
			w.WriteHeader(http.StatusOK)
			return enc.Encode(cached)
		}
	}

	result, err := ws.Index.Search(sr)
	if err != nil {
		var configErr *types.ConfigurationError
		if errors.As(err, &configErr) {
			rejectedQueries.Inc()
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}

	if ws.Tracker != nil {
		go ws.Tracker.TrackSearch(sessionId, sr.Filters, result.TotalCount, r.Header.Get("Referer"))
	}

	response := SearchResponse{
		Meta: Meta{
			Count:      len(result.Courses),
			Offset:     sr.Offset,
			TotalCount: result.TotalCount,
		},
		Objects: makeObjects(result.Courses),
		Filters: makeFilters(result.Facets, ws.Lookup),
	}

	if ws.Cache != nil {
		if err := ws.Cache.Set(cacheKey, response, ws.CacheTTL); err != nil {
			log.Printf("Failed to cache search response: %v", err)
		}
	}

	setSearchHeaders(w)
	w.WriteHeader(http.StatusOK)
	return enc.Encode(response)
}

func (ws *WebServer) GetCourse(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	course, ok := ws.Index.GetCourse(r.PathValue("id"))
	if !ok {
		http.Error(w, "course not found", http.StatusNotFound)
		return nil
	}
	setSearchHeaders(w)
	w.WriteHeader(http.StatusOK)
	return enc.Encode(course)
}

func (ws *WebServer) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// CreateHandler wires the public routes. Admin routes are registered
// separately so replica readers can serve queries only.
func (ws *WebServer) CreateHandler(mux *http.ServeMux) *http.ServeMux {
	if mux == nil {
		mux = http.NewServeMux()
	}
	mux.HandleFunc("GET /api/courses", common.JsonHandler(ws.Search))
	mux.HandleFunc("GET /api/courses/{id}", common.JsonHandler(ws.GetCourse))
	mux.HandleFunc("/health", ws.Health)
	return mux
}
