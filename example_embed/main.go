// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Example serving HTML/CSS/JS from an embed.FS under classpath: (no files on disk).
package main

import (
	"context"
	"embed"
	"fmt"
	"image"
	"os"
	"sync/atomic"

	graphene "github.com/YindSoft/graphene-ebitengine"
	"github.com/YindSoft/graphene-ebitengine/bridge"
	"github.com/YindSoft/graphene-ebitengine/config"
	"github.com/YindSoft/graphene-ebitengine/events"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/rs/zerolog/log"
)

//go:embed ui
var uiFiles embed.FS

const (
	screenWidth  = 800
	screenHeight = 600
)

type Game struct {
	host    *graphene.Host
	view    *graphene.View
	loads   atomic.Int32
	counter int
}

type stats struct {
	HP    int `json:"hp"`
	MaxHP int `json:"maxHp"`
}

func newGame(ctx context.Context) (*Game, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	cfg.Engine.Debug = true
	cfg.Widget.RelativeWidth, cfg.Widget.RelativeHeight = 1, 1

	host, err := graphene.Open(ctx, cfg, uiFiles)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	host.Layout(screenWidth, screenHeight)

	view, err := host.NewView(ctx, cfg.WidgetOptions("classpath:///ui/index.html"), image.Rect(0, 0, screenWidth, screenHeight))
	if err != nil {
		host.Close()
		return nil, err
	}
	g := &Game{host: host, view: view}

	if err := view.Widget().Bridge().RegisterHandler("stats", bridge.Typed(func(context.Context, struct{}) (stats, error) {
		return stats{HP: 80, MaxHP: 100}, nil
	})); err != nil {
		host.Close()
		return nil, err
	}
	host.Runtime().LoadEvents().RegisterFunc("counter", func(ev events.LoadEvent) error {
		if _, ok := ev.(events.LoadEnded); ok {
			g.loads.Add(1)
		}
		return nil
	})
	view.Focus()
	return g, nil
}

func (g *Game) Update() error {
	g.counter++
	if err := g.host.Update(); err != nil {
		return err
	}
	if g.counter%60 == 0 {
		_ = g.view.Widget().Emit("counter", g.counter/60)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.host.Draw(screen)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  loads: %d", ebiten.ActualFPS(), g.loads.Load()))
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	game, err := newGame(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer game.host.Close()

	ebiten.SetVsyncEnabled(false)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("graphene - embed.FS example")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal().Err(err).Msg("run")
	}
}
