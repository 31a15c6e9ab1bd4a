package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhafed/richie/pkg/common"
	"github.com/zhafed/richie/pkg/config"
	"github.com/zhafed/richie/pkg/i18n"
	"github.com/zhafed/richie/pkg/index"
	"github.com/zhafed/richie/pkg/messaging"
	"github.com/zhafed/richie/pkg/server"
	"github.com/zhafed/richie/pkg/storage"
	"github.com/zhafed/richie/pkg/tracking"
	"github.com/zhafed/richie/pkg/types"
)

var configPath = flag.String("config", "", "path to a .yaml or .toml config file")

const topicPrefix = "catalog"

func lookupFromConfig(cfg config.LabelsConfig) *i18n.StaticLookup {
	lookup := i18n.Default()
	dimensions := make(map[types.Dimension]string, len(cfg.Dimensions))
	for name, label := range cfg.Dimensions {
		dimensions[types.Dimension(name)] = label
	}
	values := make(map[types.Dimension]map[string]string, len(cfg.Values))
	for name, labels := range cfg.Values {
		values[types.Dimension(name)] = labels
	}
	lookup.Merge(dimensions, values)
	return lookup
}

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Could not load config: %v", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	idx := index.NewCourseIndex(clock.New())
	idx.MaxRunsPerCourse = cfg.Search.MaxRunsPerCourse

	db := storage.NewDiskStorage(cfg.Storage.Path)
	courses, err := db.LoadCourses()
	if err != nil {
		log.Printf("Could not load course snapshot: %v", err)
	} else if len(courses) > 0 {
		idx.UpsertCourses(courses)
		log.Printf("Loaded %d courses from snapshot", len(courses))
	}

	var tracker tracking.Tracking
	if cfg.Rabbit.Url != "" {
		master, err := messaging.NewRabbitCourseMaster(messaging.RabbitConfig{
			Url:    cfg.Rabbit.Url,
			VHost:  cfg.Rabbit.VHost,
			Prefix: topicPrefix,
		})
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer master.Close()
		idx.ChangeHandler = master

		tracker, err = tracking.NewRabbitTracking(cfg.Rabbit.Url, topicPrefix)
		if err != nil {
			log.Printf("Failed to connect to rabbitmq for tracking: %v", err)
			tracker = nil
		} else {
			defer tracker.Close()
		}
	}

	var cache *server.Cache
	if cfg.Redis.Addr != "" {
		cache = server.NewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer cache.Close()
	}

	ws := &server.WebServer{
		Index:         idx,
		Db:            db,
		Cache:         cache,
		Tracker:       tracker,
		Lookup:        lookupFromConfig(cfg.Labels),
		CacheTTL:      cfg.Search.CacheTTL(),
		ListenAddress: cfg.Server.Listen,
	}

	mux := ws.CreateHandler(nil)
	ws.CreateAdminHandler(mux)
	mux.Handle("/metrics", promhttp.Handler())

	timeouts := common.LoadTimeoutConfig(common.TimeoutConfig{
		ReadHeader: 5 * time.Second,
		Read:       30 * time.Second,
		Write:      30 * time.Second,
		Idle:       120 * time.Second,
		Shutdown:   10 * time.Second,
		Hook:       10 * time.Second,
	})
	srv := common.NewServerWithTimeouts(&http.Server{
		Addr:    cfg.Server.Listen,
		Handler: mux,
	}, timeouts)

	saveSnapshot := func(ctx context.Context) error {
		log.Println("Saving course snapshot...")
		return db.SaveCourses(idx.Snapshot())
	}

	common.RunServerWithShutdown(srv, "course catalog", timeouts.Shutdown, timeouts.Hook, saveSnapshot)
}
