package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/harrisonrobin/gravity/pkg/api"
	"github.com/harrisonrobin/gravity/pkg/auth"
	"github.com/harrisonrobin/gravity/pkg/catalog"
	"github.com/harrisonrobin/gravity/pkg/config"
	"github.com/harrisonrobin/gravity/pkg/google"
	"github.com/harrisonrobin/gravity/pkg/index"
	"github.com/harrisonrobin/gravity/pkg/model"
	"github.com/harrisonrobin/gravity/pkg/orgmode"
	"github.com/harrisonrobin/gravity/pkg/store"
	"github.com/harrisonrobin/gravity/pkg/tasks"
	"github.com/harrisonrobin/gravity/pkg/taskwarrior"
	"github.com/harrisonrobin/gravity/pkg/tui"
)

func main() {
	// 1. Parse Flags
	configPath := flag.String("config", "", "Path to config.yaml (default ~/.config/gravity/config.yaml)")
	calendarName := flag.String("calendar", "", "Google Calendar name to push to (overrides config)")
	setCalendar := flag.String("set-calendar", "", "Set the default Google Calendar name")
	doAuth := flag.Bool("auth", false, "Authenticate with Google Calendar")
	mintToken := flag.String("token", "", "Print an API bearer token for the given subject")

	addTitle := flag.String("add", "", "Add a task with this title")
	importance := flag.Int("importance", int(model.ImportanceRelevant), "Importance tier 1-4 for -add")
	kind := flag.String("kind", string(model.KindStandard), "Task kind for -add: TRIVIAL, STANDARD, FOCUS, EPIC")
	due := flag.String("due", "", "Deadline for -add: offset from now (2h, 90m) or RFC3339")
	completeID := flag.String("complete", "", "Complete the task with this id or unique id prefix")

	importTW := flag.Bool("import-taskwarrior", false, "Import pending tasks from taskwarrior")
	importOrg := flag.String("import-org", "", "Import TODO headlines from comma-separated Org files")

	asJSON := flag.Bool("json", false, "Print the ranking as JSON")
	runTUI := flag.Bool("tui", false, "Open the interactive queue")
	serve := flag.Bool("serve", false, "Serve the HTTP API")
	push := flag.Bool("push", false, "Lay the current plan onto Google Calendar")
	flag.Parse()

	// 2. Load configuration (Priority: Flag > Config > Default)
	cfg, path := loadConfig(*configPath)

	// 3. Handle Set Calendar
	if *setCalendar != "" {
		cfg.Calendar = *setCalendar
		if err := config.SaveFile(path, cfg); err != nil {
			log.Fatalf("Error saving config: %v", err)
		}
		fmt.Printf("Default calendar set to: %s\n", *setCalendar)
		return
	}
	if *calendarName != "" {
		cfg.Calendar = *calendarName
	}

	// 4. Handle Authentication
	if *doAuth {
		if err := auth.ResetToken(); err != nil {
			log.Fatalf("%v. Please delete it manually", err)
		}
		if _, err := auth.GetCalendarService(context.Background()); err != nil {
			log.Fatalf("Authentication failed: %v", err)
		}
		log.Printf("Authentication successful! Token saved to %s", auth.TokenFile)
		return
	}

	if *mintToken != "" {
		token, err := api.GenerateToken([]byte(cfg.API.TokenSecret), *mintToken, api.DefaultTokenTTL)
		if err != nil {
			log.Fatalf("Error minting token (set api.token_secret in %s): %v", path, err)
		}
		fmt.Println(token)
		return
	}

	// 5. Open the task collection
	st, err := store.Open(cfg.StoreOptions())
	if err != nil {
		log.Fatalf("Error opening %s store: %v", cfg.Store.Backend, err)
	}
	defer st.Close()

	ctx := context.Background()
	coll := tasks.New(st, catalog.Default())
	coll.Load(ctx)

	// 6. Mutations
	if *addTitle != "" {
		k, err := model.ParseKind(*kind)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		deadline, err := tasks.ParseDue(*due, time.Now())
		if err != nil {
			log.Fatalf("Error: -due: %v", err)
		}
		task, err := coll.Add(ctx, tasks.Draft{
			Title:      *addTitle,
			Importance: model.Importance(*importance),
			Kind:       k,
			Deadline:   deadline,
		})
		if err != nil {
			log.Fatalf("Error adding task: %v", err)
		}
		fmt.Printf("Added %s %q\n", shortID(task.ID), task.Title)
	}

	if *completeID != "" {
		task, err := coll.Complete(ctx, *completeID)
		if err != nil {
			log.Fatalf("Error completing task: %v", err)
		}
		fmt.Printf("Completed %s %q\n", shortID(task.ID), task.Title)
	}

	if *importTW {
		twTasks, err := taskwarrior.NewClient().GetTasks(ctx, []string{"status:pending"})
		if err != nil {
			log.Fatalf("Error reading taskwarrior: %v", err)
		}
		converted, skipped := taskwarrior.ToTasks(twTasks, coll.Catalog())
		for _, reason := range skipped {
			log.Printf("Skipping taskwarrior task: %s", reason)
		}
		fmt.Printf("Imported %d of %d taskwarrior tasks\n", coll.Import(ctx, converted), len(twTasks))
	}

	if *importOrg != "" {
		orgTasks, err := orgmode.ParseFiles(splitList(*importOrg))
		if err != nil {
			log.Fatalf("Error parsing org files: %v", err)
		}
		fmt.Printf("Imported %d of %d org tasks\n", coll.Import(ctx, orgTasks), len(orgTasks))
	}

	// 7. Surfaces
	switch {
	case *runTUI:
		if err := tui.Run(coll, cfg.TickInterval()); err != nil {
			log.Fatalf("Error running interface: %v", err)
		}
	case *serve:
		serveAPI(coll, cfg)
	case *push:
		pushPlan(ctx, coll, cfg)
	default:
		res := coll.Rank(time.Now())
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				log.Fatalf("Error encoding ranking: %v", err)
			}
			return
		}
		printReport(os.Stdout, res)
	}
}

func loadConfig(override string) (*config.Config, string) {
	path := override
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			log.Fatalf("could not find path to configuration file: error %v", err)
		}
		path = p
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		log.Printf("Warning: could not read config %s, using defaults: %v", path, err)
		cfg = config.Default()
	}
	return cfg, path
}

func serveAPI(coll *tasks.Collection, cfg *config.Config) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	router := api.NewRouter(coll, api.Options{
		TokenSecret:    cfg.API.TokenSecret,
		AllowedOrigins: cfg.API.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.API.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("gravity api starting", "addr", cfg.API.Addr, "auth", cfg.API.TokenSecret != "")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func pushPlan(ctx context.Context, coll *tasks.Collection, cfg *config.Config) {
	res := coll.Rank(time.Now())
	if res.Active == nil {
		fmt.Println("Nothing pending; calendar left unchanged.")
		return
	}

	dir, err := config.Dir()
	if err != nil {
		log.Fatalf("could not find configuration directory: %v", err)
	}
	evtIndex, err := index.NewEventIndex(index.DefaultPath(dir))
	if err != nil {
		log.Printf("Warning: failed to initialize event index: %v", err)
	}

	gClient, err := google.NewClient(ctx, cfg.Calendar, evtIndex, coll.Catalog())
	if err != nil {
		log.Fatalf("Error creating Google Calendar client: %v", err)
	}

	events, err := gClient.SyncPlan(res.Active.Task, res.Plan, res.At)
	if evtIndex != nil {
		if serr := evtIndex.Save(); serr != nil {
			log.Printf("Warning: failed to save event index: %v", serr)
		}
	}
	if err != nil {
		log.Fatalf("Error pushing plan: %v", err)
	}
	fmt.Printf("Pushed %d segment(s) for %q to calendar %q\n", len(events), res.Active.Task.Title, cfg.Calendar)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
