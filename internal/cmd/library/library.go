// Package library provides CLI commands for the game catalog that do not
// need the interactive UI.
package library

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	appconfig "github.com/Iron-Ham/gamedex/internal/config"
	"github.com/Iron-Ham/gamedex/internal/library"
)

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Inspect and modify the game catalog",
}

var libraryListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List games, optionally filtered by name or platform",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLibraryList,
}

var libraryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a game",
	Long: `Add a game to the catalog.

The quantity is rounded up to whole packs (library.pack_size), the same as
in the editor.`,
	Args: cobra.ExactArgs(1),
	RunE: runLibraryAdd,
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a game by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryRemove,
}

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog as yaml, json or csv",
	Args:  cobra.NoArgs,
	RunE:  runLibraryExport,
}

var libraryImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add every game of another catalog snapshot",
	Long: `Add every game of another catalog snapshot to this one.

Imported games get new IDs; games already present are not matched or merged.`,
	Args: cobra.ExactArgs(1),
	RunE: runLibraryImport,
}

var (
	libraryFile     string
	addPlatform     string
	addQuantity     int
	exportFormat    string
	exportOutput    string
	operationBudget = 10 * time.Second
)

func init() {
	libraryCmd.PersistentFlags().StringVar(&libraryFile, "file", "", "Catalog snapshot (default: from config)")

	libraryAddCmd.Flags().StringVarP(&addPlatform, "platform", "p", "", "Platform the game runs on")
	libraryAddCmd.Flags().IntVarP(&addQuantity, "quantity", "q", 1, "Copies in stock")

	libraryExportCmd.Flags().StringVar(&exportFormat, "format", "yaml", "Output format (yaml, json, csv)")
	libraryExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")

	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryAddCmd)
	libraryCmd.AddCommand(libraryRemoveCmd)
	libraryCmd.AddCommand(libraryExportCmd)
	libraryCmd.AddCommand(libraryImportCmd)
}

// Register adds the library commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(libraryCmd)
}

// open loads the configured catalog into a service without a bus.
func open() (*library.Service, string, *appconfig.Config, error) {
	cfg := appconfig.Get()
	path := libraryFile
	if path == "" {
		path = cfg.LibraryFile()
	}

	svc := library.NewService(library.Options{})
	if err := svc.Load(path); err != nil {
		return nil, "", nil, err
	}
	return svc, path, cfg, nil
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	svc, _, _, err := open()
	if err != nil {
		return err
	}

	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	games := svc.Search(query)

	out := cmd.OutOrStdout()
	if len(games) == 0 {
		fmt.Fprintln(out, "No games found.")
		return nil
	}

	nameWidth := len("NAME")
	for _, g := range games {
		nameWidth = max(nameWidth, len(g.Name))
	}
	fmt.Fprintf(out, "%-36s  %-*s  %-12s  %5s\n", "ID", nameWidth, "NAME", "PLATFORM", "QTY")
	for _, g := range games {
		fmt.Fprintf(out, "%-36s  %-*s  %-12s  %5d\n", g.ID, nameWidth, g.Name, g.Platform, g.Quantity)
	}
	return nil
}

func runLibraryAdd(cmd *cobra.Command, args []string) error {
	svc, path, cfg, err := open()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), operationBudget)
	defer cancel()

	qty := library.RoundUpToPack(addQuantity, cfg.Library.PackSize)
	game, err := svc.Create(ctx, args[0], addPlatform, qty).Await(ctx)
	if err != nil {
		return err
	}
	if err := svc.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) with quantity %d\n", game.Name, game.ID, game.Quantity)
	return nil
}

func runLibraryRemove(cmd *cobra.Command, args []string) error {
	svc, path, _, err := open()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), operationBudget)
	defer cancel()

	game, err := svc.Delete(ctx, args[0]).Await(ctx)
	if err != nil {
		return err
	}
	if err := svc.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", game.Name)
	return nil
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	svc, _, _, err := open()
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		file, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = file.Close() }()
		w = file
	}
	return exportGames(w, svc.Games().Items(), exportFormat)
}

func exportGames(w io.Writer, games []library.Game, format string) error {
	switch strings.ToLower(format) {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(games); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(games)
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"id", "name", "platform", "quantity", "added"}); err != nil {
			return err
		}
		for _, g := range games {
			record := []string{g.ID, g.Name, g.Platform, strconv.Itoa(g.Quantity), g.Added.Format(time.RFC3339)}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		return fmt.Errorf("unsupported export format: %s (supported: yaml, json, csv)", format)
	}
}

func runLibraryImport(cmd *cobra.Command, args []string) error {
	svc, path, _, err := open()
	if err != nil {
		return err
	}

	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("cannot import %s: %w", args[0], err)
	}
	source := library.NewService(library.Options{})
	if err := source.Load(args[0]); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), operationBudget)
	defer cancel()

	imported := 0
	for _, g := range source.Games().Items() {
		if _, err := svc.Create(ctx, g.Name, g.Platform, g.Quantity).Await(ctx); err != nil {
			return fmt.Errorf("import %q: %w", g.Name, err)
		}
		imported++
	}
	if err := svc.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d games into %s\n", imported, path)
	return nil
}
