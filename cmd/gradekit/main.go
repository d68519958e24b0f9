package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gradekit/gradekit/internal/codec"
	"github.com/gradekit/gradekit/internal/params"
	"github.com/gradekit/gradekit/internal/render"
	"github.com/gradekit/gradekit/internal/server"
	"github.com/gradekit/gradekit/internal/source"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("gradekit %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
	case "--help", "-h", "help":
		usage()
	case "serve":
		if err := runServe(); err != nil {
			fatal(err)
		}
	case "apply":
		if err := runApply(os.Args[2:]); err != nil {
			fatal(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("gradekit - color grading render engine")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gradekit apply -in photo.jpg -params grade.json -out graded.jpg [options]")
	fmt.Println("  gradekit serve")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  apply    Grade one image and write the result")
	fmt.Println("  serve    Run the stdio JSON-RPC grading service")
	fmt.Println()
	fmt.Println("Apply options:")
	fmt.Println("  -in FILE        source image (png, jpeg, gif)")
	fmt.Println("  -params FILE    grading parameters JSON (default: neutral)")
	fmt.Println("  -locals FILE    local adjustments JSON array")
	fmt.Println("  -out FILE       output file")
	fmt.Println("  -format NAME    jpeg, png or tiff (default: from -out extension)")
	fmt.Println("  -quality N      JPEG quality 1-100 (default 95)")
	fmt.Println("  -preview N      render a preview bounded to N px instead of full size")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  GRADEKIT_LOG_LEVEL=debug    Enable debug logging")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "gradekit: %v\n", err)
	os.Exit(1)
}

// newLogger builds the process logger. Log output goes to stderr; in serve
// mode stdout belongs to the JSON-RPC stream.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("GRADEKIT_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runServe() error {
	log := newLogger()
	log.Info("gradekit serve", "version", Version)
	srv := server.New(
		server.WithLogger(log),
		server.WithEngine(render.New(render.WithLogger(log))),
	)
	return srv.Run()
}

func runApply(args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	inPath := fs.String("in", "", "source image file")
	paramsPath := fs.String("params", "", "grading parameters JSON file")
	localsPath := fs.String("locals", "", "local adjustments JSON file")
	outPath := fs.String("out", "", "output file")
	format := fs.String("format", "", "output format: jpeg, png or tiff")
	quality := fs.Int("quality", codec.DefaultQuality, "JPEG quality (1-100)")
	previewDim := fs.Int("preview", 0, "bound the long side to N pixels (0 = full resolution)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return fmt.Errorf("apply requires -in and -out")
	}

	log := newLogger()

	p := params.Neutral()
	if *paramsPath != "" {
		data, err := os.ReadFile(*paramsPath)
		if err != nil {
			return fmt.Errorf("read params: %w", err)
		}
		if p, err = params.DecodeJSON(data); err != nil {
			return err
		}
	}

	var locals []params.LocalAdjustment
	if *localsPath != "" {
		data, err := os.ReadFile(*localsPath)
		if err != nil {
			return fmt.Errorf("read local adjustments: %w", err)
		}
		if locals, err = params.DecodeLocalAdjustments(data); err != nil {
			return err
		}
	}

	store := source.NewStore()
	entry, err := store.Load(*inPath)
	if err != nil {
		return err
	}
	log.Info("source loaded", "id", entry.ID, "width", entry.Width, "height", entry.Height)

	engine := render.New(render.WithLogger(log))
	src := render.Source{ID: entry.ID, Image: entry.Image}

	var raster *render.Raster
	if *previewDim > 0 {
		raster, err = engine.Preview(context.Background(), src, p, locals, *previewDim)
	} else {
		raster, err = engine.Export(context.Background(), src, p, locals)
	}
	if err != nil {
		return err
	}

	outFormat := *format
	if outFormat == "" {
		outFormat = codec.FormatFromExt(*outPath)
	}
	out, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	mime, err := codec.Encode(out, raster.Image(), outFormat, *quality)
	if err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("graded image written", "out", *outPath, "mime", mime,
		"width", raster.W, "height", raster.H, "locals", len(locals))
	return nil
}
