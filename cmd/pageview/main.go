// Command pageview is an interactive window around a resource.Page.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"pagecore/pkg/config"
	"pagecore/pkg/logging"
	"pagecore/pkg/resource"
)

func main() {
	cfg, err := config.Load(viper.New(), os.Getenv("PAGECORE_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	fetcher := resource.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	defer fetcher.Close()
	page := resource.NewPage(fetcher, resource.Options{
		ViewportWidth:  float64(cfg.Viewport.Width),
		ViewportHeight: float64(cfg.Viewport.Height),
		ScrollStep:     cfg.Viewport.ScrollStep,
		Logger:         log,
	})

	a := app.New()
	w := a.NewWindow("pagecore")
	w.Resize(fyne.NewSize(float32(cfg.Viewport.Width), float32(cfg.Viewport.Height)+80))

	view := newPageView(page, cfg.Viewport.Width, cfg.Viewport.Height, log)
	status := widget.NewLabel("Enter a URL and press Enter")

	urlEntry := widget.NewEntry()
	urlEntry.SetPlaceHolder("https://example.com")

	// navigate runs fn off the UI goroutine and refreshes the view after.
	navigate := func(what string, fn func(ctx context.Context) error) {
		status.SetText(what + "...")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Fetch.Timeout+5*time.Second)
			defer cancel()
			err := fn(ctx)
			fyne.Do(func() {
				if err != nil {
					log.Error("navigation failed", zap.Error(err))
					status.SetText("Error: " + err.Error())
					return
				}
				url := page.URL()
				urlEntry.SetText(url)
				status.SetText(url)
				w.SetTitle("pagecore - " + url)
				view.redraw()
				w.Canvas().Focus(view)
			})
		}()
	}
	view.onNavigate = func(fn func(ctx context.Context) error) {
		navigate("Loading", fn)
	}

	urlEntry.OnSubmitted = func(url string) {
		navigate("Loading "+url, func(ctx context.Context) error {
			return page.Load(ctx, url)
		})
	}
	back := widget.NewButton("<", func() {
		navigate("Going back", page.Back)
	})

	topBar := container.NewBorder(nil, nil, back, nil, urlEntry)
	w.SetContent(container.NewBorder(topBar, status, nil, nil, view))
	w.Canvas().Focus(urlEntry)

	if len(os.Args) > 1 {
		urlEntry.SetText(os.Args[1])
		urlEntry.OnSubmitted(os.Args[1])
	}
	w.ShowAndRun()
}
