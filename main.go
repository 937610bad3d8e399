package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"go.uber.org/zap"

	"markan/pkg/config"
	"markan/pkg/logging"
	"markan/pkg/services"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration, using defaults: %v\n", err)
		cfg = config.Default()
	}

	logger := logging.NewOrNop(cfg.Log)
	defer logger.Sync()

	app := NewApp(logger)
	core, err := services.NewCore(cfg, afero.NewOsFs(), logger, app.workspaceChanged)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	app.attach(core)

	// Files passed on the first launch.
	wd, _ := os.Getwd()
	for _, path := range fileArgs(os.Args[1:], wd) {
		core.Opener.Open(path)
	}

	err = wails.Run(&options.App{
		Title:  "markan",
		Width:  1200,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:     app.startup,
		OnDomReady:    app.domReady,
		OnBeforeClose: app.beforeClose,
		OnShutdown:    app.shutdown,
		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId:               "com.markan.desktop",
			OnSecondInstanceLaunch: app.onSecondInstanceLaunch,
		},
		Mac: &mac.Options{
			OnFileOpen: app.onFileOpen,
		},
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logger.Error("wails exited", zap.Error(err))
	}
}
