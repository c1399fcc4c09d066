package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/nacre/internal/log"
	"github.com/zjrosen/nacre/internal/tracing"
	"github.com/zjrosen/nacre/internal/watcher"
	"github.com/zjrosen/nacre/model"
	"github.com/zjrosen/nacre/registry"
)

var (
	inspectWatch bool
	inspectTrace bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Materialize a graph document and print its model tree",
	Long: `Materialize a JSON or YAML graph document into live models through a
deduplicating registry and print the resulting tree.

Nested objects carrying an "identity" property become models. Objects
that share a uuid resolve to a single instance and are marked (shared).

Examples:
  # Render a scene document
  nacre inspect scene.json

  # Re-render whenever the file changes
  nacre inspect scene.json --watch

  # Trace the run (exporter from config)
  nacre inspect scene.json --trace`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVarP(&inspectWatch, "watch", "w", false,
		"re-render when the file changes")
	inspectCmd.Flags().BoolVar(&inspectTrace, "trace", false,
		"trace the run even when disabled in config")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	setup, err := setupRun(inspectTrace)
	if err != nil {
		return err
	}
	defer setup.close()

	path := args[0]
	out := cmd.OutOrStdout()

	if err := inspectOnce(setup.provider, out, path); err != nil {
		return err
	}
	if !inspectWatch {
		return nil
	}

	w, err := watcher.New(watcher.Config{
		Paths:       []string{path},
		DebounceDur: cfg.Watch.Debounce,
	})
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return fmt.Errorf("watching %s: %w", path, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Fprintln(out, "Watching for changes. Press Ctrl+C to stop.")
	for {
		select {
		case <-changes:
			fmt.Fprintf(out, "\n--- %s reloaded at %s ---\n", path, time.Now().Format("15:04:05"))
			if err := inspectOnce(setup.provider, out, path); err != nil {
				// Keep watching; a transient parse error resolves on the
				// next save.
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			}
		case <-sigCh:
			return w.Stop()
		}
	}
}

// inspectOnce loads, materializes and renders the document a single time
// through a fresh registry.
func inspectOnce(provider *tracing.Provider, out io.Writer, path string) error {
	tracer := provider.Tracer()
	format := resolveFormat(path, cfg.Format)

	ctx, loadSpan := tracer.Start(context.Background(), tracing.SpanLoad,
		trace.WithAttributes(
			attribute.String(tracing.AttrDocPath, path),
			attribute.String(tracing.AttrDocFormat, string(format)),
		))
	doc, err := loadDocument(path, format)
	if err != nil {
		loadSpan.SetStatus(codes.Error, err.Error())
		loadSpan.End()
		return err
	}
	loadSpan.End()

	reg, err := newDocumentRegistry()
	if err != nil {
		return err
	}
	defer reg.Dispose()

	_, matSpan := tracer.Start(ctx, tracing.SpanMaterialize)
	root, stats, err := materializeGraph(reg, doc)
	if err != nil {
		matSpan.SetStatus(codes.Error, err.Error())
		matSpan.End()
		return fmt.Errorf("materializing %s: %w", path, err)
	}
	reg.Range(func(key string, m model.Entity) bool {
		matSpan.AddEvent(tracing.EventModelMaterialized, trace.WithAttributes(
			attribute.String(tracing.AttrModelIdentity, m.ModelIdentity()),
			attribute.String(tracing.AttrModelUUID, m.UUID()),
		))
		return true
	})
	matSpan.SetAttributes(
		attribute.Int(tracing.AttrRegistryLen, reg.Len()),
		attribute.Int(tracing.AttrSharedCount, stats.SharedRefs),
	)
	matSpan.End()

	log.Info(log.CatCLI, "document materialized",
		"path", path, "models", stats.Models, "shared", stats.SharedRefs)

	_, renderSpan := tracer.Start(ctx, tracing.SpanRender)
	renderGraph(out, root)
	renderStats(out, stats)
	renderSpan.End()
	return nil
}

// newDocumentRegistry builds the registry documents materialize through,
// honoring the registry section of the config.
func newDocumentRegistry() (*registry.Registry, error) {
	var opts []registry.Option
	if cfg.Registry.KeyAttribute != "" {
		opts = append(opts, registry.WithKeyAttribute(cfg.Registry.KeyAttribute))
	}
	if cfg.Registry.AllowOverrides {
		opts = append(opts, registry.WithAllowOverrides(true))
	}
	if cfg.Registry.TTL > 0 {
		opts = append(opts, registry.WithStore(registry.NewCacheStore(cfg.Registry.TTL)))
	}
	return registry.New(registry.BuilderFunc(model.Generic), opts...)
}
