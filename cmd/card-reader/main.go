package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/card-reader/internal/card"
	"github.com/zombor/card-reader/internal/extraction"
	"github.com/zombor/card-reader/internal/imaging"
	"github.com/zombor/card-reader/internal/ocr"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("card-reader")
	var (
		cardType    = fs.StringLong("card", "id", "Card type: 'id', 'health' or 'student'")
		frontPath   = fs.StringLong("front", "", "Image of the card front (JPEG, PNG, HEIC or PDF)")
		backPath    = fs.StringLong("back", "", "Image of the card back (id and student cards)")
		dbPath      = fs.StringLong("db", "card-reader.db", "Database file path")
		storagePath = fs.StringLong("storage", "./cards", "Directory for cleaned card images")
		engineType  = fs.StringLong("engine", "tesseract", "OCR engine: 'tesseract', 'gemini' or 'ollama'")
		languages   = fs.StringLong("lang", "hun", "Tesseract languages, '+' separated")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "qwen2.5vl", "Ollama vision model name")
		metricsFile = fs.StringLong("metrics-file", "", "Write Prometheus metrics to this textfile after the run (optional)")
		list        = fs.BoolLong("list", "List stored reads")
		show        = fs.StringLong("show", "", "Show the stored read with this ID")
		remove      = fs.StringLong("delete", "", "Delete the stored read with this ID")
		debug       = fs.BoolLong("debug", "Log every OCR round")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("CARD_READER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if *debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	db, err := card.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store, err := card.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// History commands need no OCR engine
	switch {
	case *list:
		reads, err := db.ListReads()
		exitOnError("Failed to list reads", err)
		printJSON(reads)
		return
	case *show != "":
		read, err := db.GetRead(*show)
		exitOnError("Failed to get read", err)
		printJSON(read)
		return
	case *remove != "":
		service := card.NewService(db, nil, nil, store, nil)
		exitOnError("Failed to delete read", service.DeleteRead(*remove))
		slog.Info("Read deleted", "id", *remove)
		return
	}

	kind, ok := card.ParseKind(*cardType)
	if !ok {
		slog.Error("Invalid card type", "type", *cardType, "valid", "id, health or student")
		os.Exit(1)
	}
	if *frontPath == "" {
		slog.Error("The --front image is required")
		os.Exit(1)
	}
	if kind != card.KindHealth && *backPath == "" {
		slog.Error("The --back image is required", "card", kind)
		os.Exit(1)
	}

	var engine ocr.Engine
	switch *engineType {
	case "tesseract":
		slog.Info("Initializing Tesseract...", "languages", *languages)
		engine, err = ocr.NewTesseract(strings.Split(*languages, "+")...)
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini...", "model", *geminiModel)
		engine, err = ocr.NewGemini(apiKey, *geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama...", "url", *ollamaURL, "model", *ollamaModel)
		engine, err = ocr.NewOllama(*ollamaURL, *ollamaModel)
	default:
		slog.Error("Invalid engine type", "type", *engineType, "valid", "tesseract, gemini or ollama")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize OCR engine", "engine", *engineType, "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	metrics := card.NewMetrics()
	controller := extraction.NewControllerWithDeps(engine, imaging.NewPreprocessor(), metrics, slog.Default())
	assembler := card.NewAssemblerWithDeps(controller, metrics, nil, slog.Default())
	service := card.NewService(db, assembler, imaging.NewBackgroundRemover(), store, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	front, err := loadUpload(*frontPath)
	exitOnError("Failed to load front image", err)

	var read *card.Read
	switch kind {
	case card.KindHealth:
		read, err = service.ProcessHealthCard(ctx, front)
	case card.KindID, card.KindStudent:
		back, loadErr := loadUpload(*backPath)
		exitOnError("Failed to load back image", loadErr)
		if kind == card.KindID {
			read, err = service.ProcessIDCard(ctx, front, back)
		} else {
			read, err = service.ProcessStudentCard(ctx, front, back)
		}
	}

	if *metricsFile != "" {
		if err := metrics.WriteToTextfile(*metricsFile); err != nil {
			slog.Warn("Failed to write metrics", "path", *metricsFile, "error", err)
		}
	}

	exitOnError("Failed to read card", err)
	printJSON(read)
}

func loadUpload(path string) (card.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return card.Upload{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return card.Upload{
		Filename:    filepath.Base(path),
		Data:        data,
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
	}, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("Failed to encode output", "error", err)
		os.Exit(1)
	}
}

func exitOnError(msg string, err error) {
	if err != nil {
		slog.Error(msg, "error", err)
		os.Exit(1)
	}
}
