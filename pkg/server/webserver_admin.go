package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zhafed/richie/pkg/types"
)

var (
	totalCourses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_courses_total",
		Help: "The total number of courses in the index",
	})
)

func (ws *WebServer) UpsertCourses(w http.ResponseWriter, r *http.Request) {
	var courses []*types.Course
	if err := json.NewDecoder(r.Body).Decode(&courses); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ws.Index.UpsertCourses(courses)
	totalCourses.Set(float64(ws.Index.Len()))
	log.Printf("Upserted %d courses", len(courses))
	w.WriteHeader(http.StatusOK)
}

func (ws *WebServer) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "missing course id", http.StatusBadRequest)
		return
	}
	ws.Index.DeleteCourse(id)
	totalCourses.Set(float64(ws.Index.Len()))
	w.WriteHeader(http.StatusOK)
}

func (ws *WebServer) Save(w http.ResponseWriter, r *http.Request) {
	if ws.Db == nil {
		http.Error(w, "storage not configured", http.StatusInternalServerError)
		return
	}
	if err := ws.Db.SaveCourses(ws.Index.Snapshot()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// CreateAdminHandler registers the mutation routes. Only the master process
// mounts these.
func (ws *WebServer) CreateAdminHandler(mux *http.ServeMux) *http.ServeMux {
	if mux == nil {
		mux = http.NewServeMux()
	}
	mux.HandleFunc("POST /admin/courses", ws.UpsertCourses)
	mux.HandleFunc("DELETE /admin/courses/{id}", ws.DeleteCourse)
	mux.HandleFunc("POST /admin/save", ws.Save)
	return mux
}
