package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spring-rs/spring-lsp/internal/index"
	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/position"
	"github.com/spring-rs/spring-lsp/internal/rustmacro"
	"github.com/spring-rs/spring-lsp/internal/schema"
	"github.com/spring-rs/spring-lsp/internal/serverconfig"
	"github.com/spring-rs/spring-lsp/internal/tomldoc"
)

var checkCmd = &cobra.Command{
	Use:   "check <workspace-path>",
	Short: "Run a one-shot validation pass over a workspace and print diagnostics",
	Long: `check performs a bootstrap scan (the same C5/C6 scanners and index
the server builds at startup) plus a validation pass over every
discovered TOML and Rust file, and prints the resulting diagnostics to
stdout. It exits non-zero if any Error-severity diagnostic was found,
for use in CI pipelines that want a fast fail without a running editor.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolve workspace path: %w", err)
		}

		diags, err := runCheck(context.Background(), abs, cfg)
		if err != nil {
			return err
		}

		printDiagnostics(diags)

		for _, d := range diags {
			if d.Severity == model.SeverityError {
				os.Exit(1)
			}
		}
		return nil
	},
}

// runCheck mirrors the server's own bootstrap-plus-analyze path (C1,
// C3-C6) over files read straight from disk rather than the live
// document store, since check has no editor behind it.
func runCheck(ctx context.Context, root string, cfg *serverconfig.Config) ([]model.Diagnostic, error) {
	var diags []model.Diagnostic

	provider := schema.NewProvider(cfg.Schema.URL)

	tomlFiles, err := walkFilesWithSuffix(root, ".toml")
	if err != nil {
		return nil, fmt.Errorf("walk workspace for TOML files: %w", err)
	}
	tomlParser := tomldoc.NewParser()
	for _, path := range tomlFiles {
		uri := "file://" + path
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			diags = append(diags, model.NewDiagnostic(uri, position.Range{}, model.SeverityError, "read-error", rerr.Error()))
			continue
		}
		doc, parseErr := tomlParser.Parse(string(data))
		if parseErr != nil {
			diags = append(diags, model.NewDiagnostic(uri, parseErr.Range, model.SeverityError, "parse-error", parseErr.Message))
		}
		if doc != nil {
			diags = append(diags, tomldoc.Validate(uri, doc, provider)...)
		}
	}

	rustFiles, err := walkFilesWithSuffix(root, ".rs")
	if err != nil {
		return nil, fmt.Errorf("walk workspace for Rust files: %w", err)
	}
	rustParser := rustmacro.NewParser()
	for _, path := range rustFiles {
		uri := "file://" + path
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			diags = append(diags, model.NewDiagnostic(uri, position.Range{}, model.SeverityError, "read-error", rerr.Error()))
			continue
		}
		doc, parseErr := rustParser.Parse(string(data))
		if parseErr != nil {
			diags = append(diags, model.NewDiagnostic(uri, parseErr.Range, model.SeverityError, "parse-error", parseErr.Message))
		}
		if doc != nil {
			diags = append(diags, rustmacro.Validate(uri, doc)...)
		}
	}

	idx := index.NewManager()
	if err := idx.Rebuild(ctx, root, nil); err != nil {
		return nil, fmt.Errorf("scan workspace: %w", err)
	}
	diags = append(diags, idx.ValidateDependencies()...)
	diags = append(diags, idx.RouteConflicts()...)

	return diags, nil
}

func printDiagnostics(diags []model.Diagnostic) {
	for _, d := range diags {
		fmt.Printf("%s:%d:%d: %s [%s] %s\n",
			d.URI, d.Range.Start.Line+1, d.Range.Start.Character+1,
			d.Severity, d.Code, d.Message)
	}
	if len(diags) == 0 {
		fmt.Println("no diagnostics")
	}
}

func walkFilesWithSuffix(root, suffix string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "target" || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, suffix) {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}
