/*
Package main implements the food suggestion server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

FoodServe provides typeahead suggestions for a food/drink logging app. It
merges three sources into one ranked list: the user's own logged history,
a small built-in quick-add catalog, and a remote nutrition database
(OpenFoodFacts-compatible). It can operate as a MessagePack IPC server
for integration with the surrounding CRUD app, or as a CLI application
for testing and debugging.

Remote results are fronted by TTL caches with request coalescing and a
bounded wait, so a slow upstream degrades typeahead to cached or local
data instead of stalling it.

# Usage

Start the server with default settings:

	foodserve

Use a custom history database and enable debug mode:

	foodserve -db /path/to/log.db -d

Run in CLI mode for interactive testing:

	foodserve -c -user u1

# Configuration

Runtime configuration is managed through a TOML file covering the scorer,
ranker, caches, remote client and interactive client:

	[server]
	max_query_len = 120
	request_timeout_ms = 10000

	[rank]
	local_bias = -0.1
	catalog_bias = -0.15
	remote_bias = 0.2
	max_results = 10

	[remote]
	base_url = "https://world.openfoodfacts.org"
	timeout_ms = 8000

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Search requests
are processed synchronously with timing information included in responses.

Send a search request:

	{"id": "req1", "op": "search", "u": "u1", "q": "greek yog"}

Receive ranked suggestions:

	{"id": "req1", "s": [{"n": "Greek Yogurt", "src": "Recent"}], "c": 1, "t": 3}

Lookups resolve a barcode (preferred) or free text to one product:

	{"id": "req2", "op": "lookup", "u": "u1", "b": "049000050103"}

# Command Line Flags

The following flags control application behavior:

	-db string
	    Path to the app's log database (empty disables history suggestions)
	-config string
	    Custom config file path
	-user string
	    User ID for CLI mode (default "local")
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-offline
	    Disable the remote nutrition database (history + catalog only)

All logging goes to stderr; stdout is reserved for the IPC stream.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/mealbyte/foodserve/internal/cli"
	"github.com/mealbyte/foodserve/internal/logger"
	"github.com/mealbyte/foodserve/internal/storage"
	"github.com/mealbyte/foodserve/pkg/cache"
	"github.com/mealbyte/foodserve/pkg/config"
	"github.com/mealbyte/foodserve/pkg/match"
	"github.com/mealbyte/foodserve/pkg/remote"
	"github.com/mealbyte/foodserve/pkg/server"
	"github.com/mealbyte/foodserve/pkg/suggest"
)

const (
	Version = "0.4.0-beta"
	AppName = "foodserve"
	gh      = "https://github.com/mealbyte/foodserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configPath := flag.String("config", "", "Custom config file path")
	dbPath := flag.String("db", "", "Path to the app's log database (empty disables history)")
	userID := flag.String("user", "local", "User ID for CLI mode")
	offline := flag.Bool("offline", false, "Disable the remote nutrition database")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, loadedFrom, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if loadedFrom != "" {
		log.Debugf("Using config file: (%s)", loadedFrom)
	}

	scorer := match.NewScorer(appConfig.MatchParams())
	catalog := suggest.NewCatalog(suggest.DefaultCatalog(), scorer)
	ranker := suggest.NewRanker(appConfig.RankParams(), scorer)

	var history *suggest.HistorySearch
	if *dbPath != "" {
		store, err := storage.NewSQLiteStore(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open log database: %v", err)
		}
		defer store.Close()
		history = suggest.NewHistorySearch(store, scorer)
		log.Debugf("Using log database at: %s", *dbPath)
	} else {
		log.Warn("No log database specified, running without history suggestions...")
	}

	var remoteSource suggest.RemoteSource
	if !*offline {
		remoteSource = remote.NewClient(appConfig.RemoteClientConfig(), scorer)
	} else {
		log.Debug("Remote source disabled, running offline")
	}

	service := suggest.NewService(history, catalog, remoteSource, ranker,
		cache.New[[]suggest.Scored](appConfig.SearchCacheConfig()),
		cache.New[*suggest.Product](appConfig.BarcodeCacheConfig()))

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(service, *userID, appConfig.Server.MaxQueryLen)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(service, appConfig.RequestTimeout())

	showStartupInfo(*dbPath, *offline)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func printVersion() {
	vlog := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	vlog.SetStyles(styles)

	vlog.Print("")
	vlog.Print("[ FoodServe ] Serves food suggestions before you finish typing!")
	vlog.Print("", "version", Version)
	vlog.Print("")
	vlog.Print("use -h or --help to see available options")
	vlog.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dbPath string, offline bool) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" FoodServe ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	if dbPath != "" {
		log.Infof("log db: ( %s )", dbPath)
	} else {
		log.Info("log db: none")
	}
	if offline {
		log.Info("remote: disabled")
	}
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
