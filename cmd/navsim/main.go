package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/navsim/prefabs"
	"github.com/milk9111/navsim/sim"
)

func main() {
	arenaPath := flag.String("arena", "", "arena spec yaml (default: prefabs/arena.yaml, embedded copy if missing)")
	ticks := flag.Int("ticks", 20000, "stop after this many ticks, 0 for no limit")
	seed := flag.Int64("seed", 0, "spawn seed, 0 keeps the arena seed")
	watch := flag.Bool("watch", false, "reload navigator settings and rules when the arena or scripts change")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "navsim"})
	lvl, err := log.ParseLevel(*level)
	if err != nil {
		logger.Fatal("bad -log-level", "err", err)
	}
	logger.SetLevel(lvl)

	arena, err := loadArena(*arenaPath)
	if err != nil {
		logger.Fatal("load arena", "err", err)
	}

	opts := []sim.Option{sim.WithLogger(logger)}
	if *seed != 0 {
		opts = append(opts, sim.WithSeed(*seed))
	}
	world, err := sim.NewWorld(arena, opts...)
	if err != nil {
		logger.Fatal("build world", "err", err)
	}
	if err := world.Spawn(); err != nil {
		logger.Fatal("spawn", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var reloads <-chan string
	if *watch {
		w, err := prefabs.NewWatcher(watchDirs(*arenaPath)...)
		if err != nil {
			logger.Fatal("watch", "err", err)
		}
		defer w.Close()
		reloads = w.Events
		go func() {
			for err := range w.Errors {
				logger.Warn("watch", "err", err)
			}
		}()
	}

	gate := newReloadGate(*arenaPath)
	steps := run(ctx, world, *ticks, reloads, func(name string) {
		if !gate.changed(name) {
			logger.Debug("reload skipped, arena unchanged", "file", name)
			return
		}
		next, err := loadArena(*arenaPath)
		if err != nil {
			logger.Error("reload arena", "err", err)
			return
		}
		if err := world.ApplyNavigator(next.Navigator); err != nil {
			logger.Error("reload navigator", "err", err)
		}
		if err := world.ApplyRules(next); err != nil {
			logger.Error("reload rules", "err", err)
		}
	})

	for _, c := range world.Census() {
		logger.Info("census", "species", c.Species, "agents", c.Agents)
	}
	if winner, over := world.GameOver(); over {
		logger.Info("finished", "ticks", steps, "winner", world.Species().Name(winner))
	} else {
		logger.Info("stopped", "ticks", steps)
	}
}

// run steps the world until game over, the tick limit or ctx ends, applying
// reloads between steps.
func run(ctx context.Context, world *sim.World, limit int, reloads <-chan string, reload func(string)) int {
	steps := 0
	for limit <= 0 || steps < limit {
		if _, over := world.GameOver(); over || ctx.Err() != nil {
			break
		}
		select {
		case name, ok := <-reloads:
			if ok {
				reload(name)
			}
		default:
		}
		world.Step()
		steps++
	}
	return steps
}

func loadArena(path string) (*prefabs.ArenaSpec, error) {
	if path == "" {
		return prefabs.LoadArenaSpec("arena.yaml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return prefabs.DecodeArenaSpec(data)
}

// reloadGate drops arena events whose file modification time has not moved
// since the last accepted reload. Script events always pass.
type reloadGate struct {
	arena string
	last  time.Time
}

func newReloadGate(arenaPath string) *reloadGate {
	g := &reloadGate{arena: "arena.yaml"}
	if arenaPath != "" {
		if abs, err := filepath.Abs(arenaPath); err == nil {
			g.arena = abs
		}
	}
	g.last, _ = prefabs.ModTime(g.arena)
	return g
}

func (g *reloadGate) changed(name string) bool {
	if filepath.Ext(name) == ".tengo" {
		return true
	}
	mt, ok := prefabs.ModTime(g.arena)
	if !ok {
		return true
	}
	if mt.Equal(g.last) {
		return false
	}
	g.last = mt
	return true
}

func watchDirs(arenaPath string) []string {
	var dirs []string
	if arenaPath != "" {
		dirs = append(dirs, filepath.Dir(arenaPath))
	}
	for _, dir := range []string{"prefabs", filepath.Join("prefabs", "scripts")} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
