package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/af-corp/media-delivery/internal/asset"
	"github.com/af-corp/media-delivery/internal/config"
	"github.com/af-corp/media-delivery/internal/delivery"
	"github.com/af-corp/media-delivery/internal/render"
	"github.com/af-corp/media-delivery/internal/transform"
)

const usage = `usage: cldurl [flags] -src <url|container::path> [key=value ...]

Prints the delivery URL and final dimensions for an asset. Arguments after
the flags are tag arguments, for example width=300 fit=crop_focal tag=true.
`

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	manifest := flag.String("manifest", "", "asset manifest (overrides service.yaml)")
	dbURL := flag.String("db-url", "", "database URL (overrides env and manifest)")
	src := flag.String("src", "", "asset URL or ID (required)")
	kenBurns := flag.Bool("kenburns", false, "print the ken burns video URL instead")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *src == "" {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "\nerror: -src is required")
		os.Exit(1)
	}

	params, err := parseArgs(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	params.Set("src", *src)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := config.DefaultConfig()
	if err := config.LoadFile(filepath.Join(*configDir, "service.yaml"), cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cloudinary, err := config.LoadCloudinary(filepath.Join(*configDir, "cloudinary.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	source, closeSource, err := openSource(ctx, *dbURL, *manifest, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeSource()

	store := asset.NewCachedStore(source, nil, 0, nil)
	provider := delivery.Select(cloudinary, delivery.Options{
		Resolver:    store,
		FallbackURL: cfg.Fallback.BaseURL,
		Logger:      logger,
	})
	renderer := render.NewRenderer(store, func() delivery.URLProvider { return provider }, logger, nil)

	req := render.Request{Params: params, Field: "cli"}
	if *kenBurns {
		out, err := renderer.KenBurns(ctx, req)
		if err != nil {
			closeSource()
			os.Exit(1)
		}
		fmt.Println(out.URL)
		return
	}

	out, err := renderer.Tag(ctx, req)
	if err != nil {
		closeSource()
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  Delivery URL generated")
	fmt.Println("  ======================")
	fmt.Println()
	fmt.Printf("  Provider:   %s\n", provider.Name())
	fmt.Printf("  URL:        %s\n", out.URL)
	fmt.Printf("  Dimensions: %dx%d\n", out.Width, out.Height)
	if out.HTML != "" {
		fmt.Printf("  Tag:        %s\n", out.HTML)
	}
	fmt.Println()
}

// parseArgs turns key=value arguments into ordered tag arguments.
func parseArgs(args []string) (*transform.Params, error) {
	params := transform.NewParams()
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", arg)
		}
		params.Set(key, transform.ParseValue(value))
	}
	return params, nil
}

func openSource(ctx context.Context, dbURL, manifest string, cfg *config.Config) (asset.Source, func(), error) {
	dsn := dbURL
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" && cfg.Database.Enabled() {
		dsn = cfg.Database.DSN()
	}

	if dsn != "" {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return asset.NewPostgresSource(conn), func() { conn.Close(context.Background()) }, nil
	}

	if manifest == "" {
		manifest = cfg.Assets.ManifestPath
	}
	src, err := asset.LoadManifest(manifest)
	if err != nil {
		return nil, nil, err
	}
	return src, func() {}, nil
}
