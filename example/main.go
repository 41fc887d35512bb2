// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	graphene "github.com/YindSoft/graphene-ebitengine"
	"github.com/YindSoft/graphene-ebitengine/bridge"
	"github.com/YindSoft/graphene-ebitengine/config"
	"github.com/YindSoft/graphene-ebitengine/events"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	screenWidth  = 800
	screenHeight = 600
	mainUIWidth  = 600
	sidebarWidth = 200
)

type Game struct {
	host    *graphene.Host
	mainUI  *graphene.View
	sidebar *graphene.View
	counter int
}

func newGame(ctx context.Context, cfg *config.Config) (*Game, error) {
	host, err := graphene.Open(ctx, cfg, os.DirFS("."))
	if err != nil {
		return nil, err
	}

	mainOpts := cfg.WidgetOptions("classpath:///ui/index.html")
	mainOpts.Size.Width, mainOpts.Size.Height = mainUIWidth, screenHeight
	mainUI, err := host.NewView(ctx, mainOpts, image.Rect(0, 0, mainUIWidth, screenHeight))
	if err != nil {
		host.Close()
		return nil, fmt.Errorf("main UI: %w", err)
	}

	sideOpts := cfg.WidgetOptions("classpath:///ui/sidebar.html")
	sideOpts.Size.Width, sideOpts.Size.Height = sidebarWidth, screenHeight
	sidebar, err := host.NewView(ctx, sideOpts, image.Rect(mainUIWidth, 0, screenWidth, screenHeight))
	if err != nil {
		host.Close()
		return nil, fmt.Errorf("sidebar UI: %w", err)
	}

	g := &Game{host: host, mainUI: mainUI, sidebar: sidebar}
	mainUI.ColorScale.ScaleAlpha(0.5)
	sidebar.ColorScale.ScaleAlpha(0.5)

	if err := mainUI.Widget().Bridge().RegisterHandler("greet", bridge.Typed(g.greet)); err != nil {
		return nil, err
	}
	if err := sidebar.Widget().Bridge().HandleFunc("echo", func(_ context.Context, req bridge.Request) (any, error) {
		return map[string]any{"echo": req.Payload, "status": "ok"}, nil
	}); err != nil {
		return nil, err
	}
	host.Runtime().BridgeEvents().RegisterFunc("log", func(ev events.BridgeEvent) error {
		log.Info().Int32("browser", int32(ev.Browser)).Str("channel", ev.Channel).RawJSON("payload", ev.Payload).Msg("page event")
		return nil
	})
	host.Runtime().LoadEvents().RegisterFunc("log", func(ev events.LoadEvent) error {
		switch ev := ev.(type) {
		case events.LoadFailed:
			log.Warn().Str("url", ev.FailedURL).Str("error", ev.ErrorText).Msg("page failed to load")
		case events.LoadEnded:
			if ev.Frame.Main && ev.Browser == mainUI.Widget().ID() {
				g.askTitle(ctx)
			}
		}
		return nil
	})
	mainUI.Focus()

	return g, nil
}

func (g *Game) greet(_ context.Context, name string) (string, error) {
	if name == "" {
		name = "stranger"
	}
	return fmt.Sprintf("Hello %s, from Go!", name), nil
}

func (g *Game) Update() error {
	g.counter++
	if err := g.host.Update(); err != nil {
		return err
	}

	// Push the counter to the page every second
	if g.counter%60 == 0 {
		if err := g.mainUI.Widget().Emit("counter", g.counter/60); err != nil {
			log.Debug().Err(err).Msg("counter not sent")
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 40, 255})

	// Animated shapes behind the HTML (visible through transparent areas)
	t := float64(g.counter) / 60.0
	bx := float32(100 + 80*math.Sin(t*0.5))
	by := float32(200 + 60*math.Cos(t*0.7))
	vector.DrawFilledRect(screen, bx, by, 120, 120, color.RGBA{0, 200, 80, 255}, true)
	vector.DrawFilledRect(screen, bx+140, by+30, 80, 80, color.RGBA{200, 180, 0, 255}, true)

	g.host.Draw(screen)

	fx := float32(500 + 50*math.Sin(t*0.8))
	fy := float32(50 + 30*math.Cos(t*0.6))
	vector.DrawFilledRect(screen, fx, fy, 100, 100, color.RGBA{255, 50, 50, 128}, true)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
}

func (g *Game) Layout(_, _ int) (int, int) {
	g.host.Layout(screenWidth, screenHeight)
	return screenWidth, screenHeight
}

// askTitle shows a host-to-page request: the page answers with
// graphene.handle("title", () => document.title).
func (g *Game) askTitle(ctx context.Context) {
	g.mainUI.Widget().Send(ctx, "title", nil).Then(func(raw json.RawMessage, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("title request failed")
			return
		}
		log.Info().RawJSON("title", raw).Msg("page title")
	})
}

func main() {
	cfg, err := config.Load(os.Getenv("GRAPHENE_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx := context.Background()
	game, err := newGame(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	defer game.host.Close()

	ebiten.SetVsyncEnabled(false)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("graphene - Ebiten + browser demo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal().Err(err).Msg("run")
	}
}
