// Command editsh is an interactive shell over a local editor. Any registered command can be
// run by name with its arguments as a JSON array:
//
//	> import ./photo.jpg
//	> loadImage ["photo", "asset_01h..."]
//	> addText ["hello", {"left": 20, "fill": "#ff0000"}]
//	> undo
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/inamate/imagedit/internal/asset"
	"github.com/inamate/imagedit/internal/config"
	"github.com/inamate/imagedit/internal/editor"
	"github.com/inamate/imagedit/internal/scene"
)

var builtins = []string{"help", "commands", "history", "scene", "undo", "redo", "import", "save", "open", "quit"}

type shell struct {
	ed     *editor.Editor
	assets *asset.Store
	out    io.Writer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	assets, err := asset.NewStore(cfg.AssetDir)
	if err != nil {
		logger.Error("open asset store", "error", err)
		os.Exit(1)
	}
	ed := editor.New(editor.WithLogger(logger), editor.WithImageSource(assets))
	defer ed.Destroy()

	sh := &shell{ed: ed, assets: assets, out: os.Stdout}
	ed.On(editor.EventUndoStackChanged, func(n int) { logger.Debug("undo stack changed", "len", n) })
	ed.On(editor.EventRedoStackChanged, func(n int) { logger.Debug("redo stack changed", "len", n) })

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     filepath.Join(os.TempDir(), "editsh_history"),
		AutoComplete:    sh.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		logger.Error("start readline", "error", err)
		os.Exit(1)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return
			}
			fmt.Fprintf(os.Stderr, "readline error: %v\n", err)
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" || line == "q" {
			return
		}
		if err := sh.run(context.Background(), line); err != nil {
			fmt.Fprintf(sh.out, "error (%s): %v\n", editor.ErrorCode(err), err)
		}
	}
}

func (s *shell) completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItemDynamic(func(string) []string {
			names := append(s.ed.Commands(), builtins...)
			sort.Strings(names)
			return names
		}),
	)
}

func (s *shell) run(ctx context.Context, line string) error {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "help", "?":
		fmt.Fprintln(s.out, "builtins:", strings.Join(builtins, ", "))
		fmt.Fprintln(s.out, "run any command as: <name> [json array of args]")
		return nil
	case "commands":
		for _, n := range s.ed.Commands() {
			fmt.Fprintln(s.out, n)
		}
		return nil
	case "history":
		return s.print(s.ed.History())
	case "scene":
		return s.print(s.ed.Snapshot())
	case "undo":
		res, err := s.ed.Undo(ctx)
		if err != nil {
			return err
		}
		return s.print(res)
	case "redo":
		res, err := s.ed.Redo(ctx)
		if err != nil {
			return err
		}
		return s.print(res)
	case "import":
		return s.importFile(rest)
	case "save":
		return s.save(rest)
	case "open":
		return s.open(rest)
	}

	var args []any
	if rest != "" {
		if err := json.Unmarshal([]byte(rest), &args); err != nil {
			return fmt.Errorf("%w: arguments must be a JSON array: %v", scene.ErrInvalidParameter, err)
		}
	}
	res, err := s.ed.Execute(ctx, name, args...)
	if err != nil {
		return err
	}
	return s.print(res)
}

func (s *shell) importFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := s.assets.Save(f, filepath.Base(path))
	if err != nil {
		return err
	}
	return s.print(info)
}

func (s *shell) save(path string) error {
	data, err := json.MarshalIndent(s.ed.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *shell) open(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc scene.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", scene.ErrInvalidParameter, err)
	}
	return s.ed.Restore(doc)
}

func (s *shell) print(v any) error {
	if v == nil {
		return nil
	}
	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
