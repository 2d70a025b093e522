package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Burhanali2211/SegiTelep-sub000/internal/api"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/assets"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/audio"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/canvas"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/config"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/coordinator"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/db"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/history"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/importer"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/logging"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/player"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/project"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/remote"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/store"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/version"
)

var initConfig = flag.Bool("init-config", false, "Generate default config file and exit")

const configPath = "configs/segitelep.yaml"

func main() {
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated: " + configPath)
		return
	}

	if err := run(context.Background(), configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Optional .env for developer overrides; absence is fine.
	_ = godotenv.Load()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("SegiTelep Started", "version", version.Version)

	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbConn.Close()
	st := store.NewSQLiteStore(dbConn)

	assetStore, err := assets.New(appCfg.Assets.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize asset store: %w", err)
	}

	projects, err := project.NewManager(appCfg.Editor.ProjectsDir)
	if err != nil {
		return fmt.Errorf("failed to initialize project manager: %w", err)
	}

	ed := editor.NewStore(assetStore, editor.Options{
		DefaultSegmentDuration: appCfg.Editor.DefaultSegmentDuration,
		ChainMode:              appCfg.Editor.ChainMode,
		ZoomMin:                appCfg.Editor.ZoomMin,
		ZoomMax:                appCfg.Editor.ZoomMax,
	})
	hist := history.NewManager(ed, 100)

	audioMgr := audio.New()
	defer audioMgr.Shutdown()
	restoreAudioState(ctx, st, audioMgr)

	coord := coordinator.New()
	resolver := assets.NewResolver(assetStore)
	pl := player.New(ed, audioMgr, coord, resolver, appCfg.Playback)
	defer pl.Close()

	remoteSrv := remote.New(pl, appCfg.Remote)
	if err := remoteSrv.Start(); err != nil {
		slog.Warn("Remote control failed to start", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		remoteSrv.Shutdown(shutdownCtx)
	}()

	restoreLastProject(ctx, st, projects, ed)

	autosaver := project.NewAutosaver(ed, projects, time.Duration(appCfg.Editor.AutosaveDebounce))
	defer autosaver.Close()

	im := importer.New(ed, assetStore)

	return runServer(ctx, appCfg, ed, hist, pl, im, projects, assetStore, st)
}

// restoreLastProject reopens the project the previous session left open.
// The index record is checked first so a key pointing at a project whose
// file was removed out-of-band does not trigger a load error at startup.
func restoreLastProject(ctx context.Context, st store.Store, projects *project.Manager, ed *editor.Store) {
	lastID, ok := st.GetState(ctx, "last_project")
	if !ok || lastID == "" {
		return
	}
	rec, err := st.GetProjectRecord(ctx, lastID)
	if err != nil || rec == nil {
		slog.Debug("Last project missing from index, starting empty", "id", lastID)
		return
	}
	p, err := projects.Load(lastID)
	if err != nil {
		slog.Warn("Failed to restore last project", "id", lastID, "error", err)
		return
	}
	ed.LoadProject(p)
	slog.Info("Restored last project", "id", p.ID, "name", p.Name)
}

func restoreAudioState(ctx context.Context, st store.Store, audioMgr *audio.Manager) {
	if volStr, ok := st.GetState(ctx, "volume"); ok {
		if vol, err := strconv.ParseFloat(volStr, 64); err == nil {
			audioMgr.SetVolume(vol)
		}
	}
}

func runServer(ctx context.Context, cfg *config.Config, ed *editor.Store, hist *history.Manager, pl *player.Player, im *importer.Importer, projects *project.Manager, assetStore *assets.Store, st store.Store) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	gestures := canvas.NewController(ed, hist, canvas.Config{
		SnapEdgePercent:  cfg.Editor.SnapEdgePercent,
		SnapPanPixels:    cfg.Editor.SnapPanPixels,
		MinDrawPercent:   model.MinRegionPercent,
		MinResizePercent: 5,
	})

	srv := api.NewServer(cfg.Server.Address,
		api.NewProjectHandler(projects, ed, hist, assetStore, st),
		api.NewEditorHandler(ed, hist),
		api.NewCanvasHandler(gestures, ed),
		api.NewPlaybackHandler(pl, cfg.Remote, st),
		api.NewFrameHandler(pl, ed, assetStore),
		api.NewAssetHandler(assetStore),
		api.NewImportHandler(im, ed, assetStore),
		api.NewTickHandler(pl),
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
