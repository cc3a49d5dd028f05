// Command graphmatch loads a pattern and a storage backend, compiles a
// matching plan, executes it, and prints the matches. Grounded on the
// teacher's cmd/janus-datalog's flag-driven main.go (backend selection
// via flags, Table()-formatted output).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wbrown/graphmatch/executor"
	"github.com/wbrown/graphmatch/parser"
	"github.com/wbrown/graphmatch/planner"
	"github.com/wbrown/graphmatch/resultdump"
	"github.com/wbrown/graphmatch/storage"
)

func main() {
	var (
		backend     string
		dbPath      string
		patternPath string
		neo4jURI    string
		neo4jUser   string
		neo4jPass   string
		neo4jDB     string
		statsPath   string
		advanced    bool
		batched     bool
		workers     int
		detailed    bool
		colored     bool
		explain     bool
		cacheSize   int
	)

	flag.StringVar(&backend, "backend", "embedded", "storage backend: embedded, sqlite, neo4j")
	flag.StringVar(&dbPath, "db", "", "sqlite db path, or badger on-disk directory for embedded (empty: in-memory)")
	flag.StringVar(&patternPath, "pattern", "", "path to a pattern text file (required)")
	flag.StringVar(&neo4jURI, "neo4j-uri", "bolt://localhost:7687", "neo4j connection URI")
	flag.StringVar(&neo4jUser, "neo4j-user", "neo4j", "neo4j username")
	flag.StringVar(&neo4jPass, "neo4j-pass", "", "neo4j password")
	flag.StringVar(&neo4jDB, "neo4j-db", "", "neo4j database name")
	flag.StringVar(&statsPath, "stats", "", "path to a statistics JSON file for the order calculator")
	flag.BoolVar(&advanced, "advanced", false, "use the selectivity/histogram order calculator instead of label cardinality")
	flag.BoolVar(&batched, "batched-get-adj", false, "use the batched GetAdj fan-out strategy instead of one goroutine per matched graph")
	flag.IntVar(&workers, "workers", 0, "worker pool size; <= 0 uses NumCPU")
	flag.BoolVar(&detailed, "detailed", false, "print every matched attribute instead of just label and vid")
	flag.BoolVar(&colored, "color", false, "colorize printed output")
	flag.BoolVar(&explain, "explain", false, "print the compiled plan instead of executing it")
	flag.IntVar(&cacheSize, "plan-cache-size", 0, "compiled plan cache size; <= 0 uses the default")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -pattern <file> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Subgraph pattern matching over a vertex/edge graph store.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if patternPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -pattern is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "graphmatch: ", log.LstdFlags)

	patternFile, err := os.Open(patternPath)
	if err != nil {
		logger.Fatalf("opening pattern file: %v", err)
	}
	patternText, pattern, err := parser.ParsePattern(patternFile)
	patternFile.Close()
	if err != nil {
		logger.Fatalf("parsing pattern: %v", err)
	}

	ctx := context.Background()
	adapter, err := openAdapter(ctx, backend, dbPath, neo4jURI, neo4jUser, neo4jPass, neo4jDB, logger)
	if err != nil {
		logger.Fatalf("opening storage backend: %v", err)
	}
	defer adapter.Close()

	opts := planner.Options{Cache: planner.NewPlanCache(cacheSize, 0)}
	if advanced {
		opts.Strategy = planner.OrderAdvanced
		if statsPath != "" {
			stats, err := loadAdvancedStatistics(statsPath)
			if err != nil {
				logger.Fatalf("loading statistics: %v", err)
			}
			opts.Advanced = stats
		}
	} else {
		opts.Strategy = planner.OrderBasic
		if statsPath != "" {
			stats, err := loadStatistics(statsPath)
			if err != nil {
				logger.Fatalf("loading statistics: %v", err)
			}
			opts.Basic = stats
		}
	}

	plan := planner.GenerateOptimalPlan(patternText, pattern, opts)

	if explain {
		fmt.Print(planner.ExplainText(plan))
		return
	}

	strategy := executor.GetAdjSerial
	if batched {
		strategy = executor.GetAdjBatched
	}
	engine := executor.NewExecEngine(adapter, executor.Options{GetAdjStrategy: strategy, Workers: workers})

	start := time.Now()
	results, err := engine.Exec(ctx, plan)
	elapsed := time.Since(start)
	if err != nil {
		logger.Fatalf("executing plan: %v", err)
	}

	dumper := resultdump.NewDumper(results, plan)
	dumper.Detailed = detailed
	dumper.Colored = colored
	fmt.Printf("%s (%.3fms)\n", dumper.Table(), float64(elapsed.Microseconds())/1000.0)
}

func openAdapter(ctx context.Context, backend, dbPath, neo4jURI, neo4jUser, neo4jPass, neo4jDB string, logger *log.Logger) (storage.Adapter, error) {
	switch backend {
	case "embedded":
		if dbPath == "" {
			return storage.NewEmbeddedAdapter(logger)
		}
		return storage.NewEmbeddedAdapter(logger, storage.WithPath(dbPath))
	case "sqlite":
		if dbPath == "" {
			return nil, fmt.Errorf("-db is required for the sqlite backend")
		}
		return storage.NewSQLiteAdapter(dbPath, logger)
	case "neo4j":
		cfg := storage.Neo4jConfig{URI: neo4jURI, Username: neo4jUser, Password: neo4jPass, Database: neo4jDB}
		return storage.NewNeo4jAdapter(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown backend %q (want embedded, sqlite, or neo4j)", backend)
	}
}

func loadStatistics(path string) (*planner.Statistics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return planner.LoadStatistics(f)
}

func loadAdvancedStatistics(path string) (*planner.AdvancedStatistics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return planner.LoadAdvancedStatistics(f)
}
