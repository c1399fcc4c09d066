package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/nacre/internal/tracing"
)

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Compare two graph documents",
	Long: `Compare two graph documents line by line. Both files are normalized
to canonical JSON first, so a YAML file and its JSON twin diff clean and
key order never shows up as a change.

Examples:
  # Compare two revisions of a scene
  nacre diff scene-v1.json scene-v2.json

  # Formats can differ
  nacre diff scene.yaml scene.json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	setup, err := setupRun(false)
	if err != nil {
		return err
	}
	defer setup.close()

	tracer := setup.provider.Tracer()
	_, span := tracer.Start(context.Background(), tracing.SpanDiff,
		trace.WithAttributes(attribute.String(tracing.AttrDocPath, args[0])))
	defer span.End()

	left, err := canonicalText(args[0])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	right, err := canonicalText(args[1])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if left == right {
		fmt.Fprintln(cmd.OutOrStdout(), "No differences.")
		return nil
	}
	printDiff(cmd.OutOrStdout(), left, right)
	return nil
}

// canonicalText loads a document and renders it as indented JSON.
// encoding/json sorts object keys, so the result is stable across
// source formats and key order.
func canonicalText(path string) (string, error) {
	doc, err := loadDocument(path, resolveFormat(path, cfg.Format))
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}
	return string(data) + "\n", nil
}

func printDiff(w io.Writer, left, right string) {
	dmp := diffmatchpatch.New()
	leftRunes, rightRunes, lines := dmp.DiffLinesToChars(left, right)
	diffs := dmp.DiffMain(leftRunes, rightRunes, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	for _, diff := range diffs {
		for _, line := range splitDiffLines(diff.Text) {
			switch diff.Type {
			case diffmatchpatch.DiffDelete:
				fmt.Fprintln(w, deleteStyle.Render("- "+line))
			case diffmatchpatch.DiffInsert:
				fmt.Fprintln(w, insertStyle.Render("+ "+line))
			case diffmatchpatch.DiffEqual:
				fmt.Fprintln(w, "  "+line)
			}
		}
	}
}

func splitDiffLines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
