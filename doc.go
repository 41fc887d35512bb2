// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package graphene renders off-screen browser views as Ebiten textures and
// connects Go and page script with a request/response bridge.
//
// Basic usage:
//
//	cfg, _ := config.Load("")
//	host, err := graphene.Open(ctx, cfg, uiFiles) // uiFiles served as classpath:///...
//	if err != nil { ... }
//	defer host.Close()
//
//	view, err := host.NewView(ctx, cfg.WidgetOptions("classpath:///ui/index.html"), image.Rect(0, 0, 800, 600))
//	view.Focus()
//
//	// Serve requests from the page: graphene.request("add", [1, 2]).then(...)
//	view.Widget().Bridge().RegisterHandler("add", bridge.Typed(func(ctx context.Context, in []int) (int, error) {
//	    return in[0] + in[1], nil
//	}))
//
//	// Ask the page: graphene.handle("title", () => document.title)
//	title, err := view.Widget().Send(ctx, "title", nil).Await(ctx)
//
//	// Fire-and-forget in both directions:
//	view.Widget().Emit("hp", map[string]int{"hp": 80})         // page: graphene.on("hp", fn)
//	host.Runtime().BridgeEvents().RegisterFunc("clicks", fn) // page: graphene.emit("clicked", {...})
//
//	// In Ebiten's Update, Draw and Layout:
//	host.Update()
//	host.Draw(screen)
//	host.Layout(outsideWidth, outsideHeight)
//
// Page load progress is published on Runtime.LoadEvents. Engine callbacks
// may arrive on any thread: paints are queued and uploaded on the game
// goroutine by View.Draw, and listeners and bridge handlers run off the
// engine thread.
//
// Requirements: the bridge shared library (graphene_bridge.dll on Windows,
// libgraphene_bridge.so on Linux, libgraphene_bridge.dylib on macOS) must be
// next to the executable or in config's engine.library_dir.
package graphene
