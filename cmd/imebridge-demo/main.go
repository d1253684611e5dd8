// imebridge-demo is a minimal Gio host exercising the IBus bridge.
//
// It opens one window acting as a single text surface: widget focus
// drives FocusIn/FocusOut on the daemon's input context, a placeholder
// caret rectangle drives SetCursorLocation, and the session is pumped
// once per frame. With an IBus desktop configured (XMODIFIERS=@im=ibus)
// the daemon sees the window as a live IME client; without one the demo
// runs identically, just with IME reported unavailable.
package main

import (
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"imebridge/internal/config"
	"imebridge/internal/ibus"
	"imebridge/internal/logging"
)

func main() {
	cfg := config.Default()
	if path, err := config.DefaultPath(); err == nil {
		if loaded, err := config.Load(path); err != nil {
			log.Printf("Warning: %v, using defaults", err)
		} else {
			cfg = loaded
		}
	}

	logger, closer, err := logging.Setup(logging.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.Logging.File,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	session := ibus.NewSession(ibus.Options{
		ClientName:  cfg.ClientName,
		AddressFile: cfg.AddressFile,
		Reporter:    logging.NewReporter(logging.Component(logger, "ibus")),
	})

	go func() {
		w := new(app.Window)
		w.Option(app.Title("IME Bridge Demo"))
		w.Option(app.Size(unit.Dp(480), unit.Dp(240)))

		if err := loop(w, session, cfg.WatchAddressFile); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func loop(w *app.Window, session *ibus.Session, watchAddressFile bool) error {
	th := material.NewTheme()

	session.ActivateIfConfigured()

	var watcher *ibus.AddressWatcher
	if watchAddressFile && session.AddressFile() != "" {
		var err error
		if watcher, err = ibus.WatchAddressFile(session); err != nil {
			slog.Warn("address file watcher unavailable", "error", err)
		}
	}
	defer func() {
		if watcher != nil {
			watcher.Close()
		}
	}()

	// The whole window is one text surface.
	surface := new(int)
	focused := false
	focusRequested := false
	var lastCaret image.Rectangle

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			session.Terminate()
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			session.Pump()

			// Declare the input area and collect its events.
			area := clip.Rect(image.Rectangle{Max: gtx.Constraints.Max}).Push(gtx.Ops)
			event.Op(gtx.Ops, surface)
			area.Pop()

			for {
				ev, ok := gtx.Event(
					key.FocusFilter{Target: surface},
					pointer.Filter{Target: surface, Kinds: pointer.Press},
				)
				if !ok {
					break
				}
				switch ev := ev.(type) {
				case key.FocusEvent:
					focused = ev.Focused
					session.NotifyFocus(ev.Focused)
				case pointer.Event:
					if ev.Kind == pointer.Press {
						gtx.Execute(key.FocusCmd{Tag: surface})
					}
				}
			}
			if !focusRequested {
				gtx.Execute(key.FocusCmd{Tag: surface})
				focusRequested = true
			}

			caret := layoutDemo(gtx, th, session, focused)
			if caret != lastCaret {
				lastCaret = caret
				session.UpdateCursorGeometry(
					int32(caret.Min.X), int32(caret.Min.Y),
					int32(caret.Dx()), int32(caret.Dy()),
				)
			}

			e.Frame(gtx.Ops)
		}
	}
}

// layoutDemo renders the status text and a placeholder caret, returning
// the caret rectangle in window coordinates.
func layoutDemo(gtx layout.Context, th *material.Theme, session *ibus.Session, focused bool) image.Rectangle {
	status := "IME: inactive (environment gate closed)"
	switch {
	case session.Ready():
		status = "IME: connected @ " + session.Address()
	case session.Activated():
		status = "IME: configured, daemon unavailable"
	}
	if focused {
		status += " · focused"
	}

	inset := gtx.Dp(16)
	layout.UniformInset(unit.Dp(16)).Layout(gtx, material.Body1(th, status).Layout)

	// Placeholder caret below the status line; a real host reports the
	// text widget's actual caret rectangle here.
	caret := image.Rect(inset, inset*3, inset+gtx.Dp(2), inset*3+gtx.Dp(18))
	caretColor := color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
	if focused {
		caretColor = color.NRGBA{A: 0xff}
	}
	paint.FillShape(gtx.Ops, caretColor, clip.Rect(caret).Op())
	return caret
}
