// Package views renders the four application views. Markup is kept
// deliberately minimal; the workflow lives in the JSON endpoints, and
// the forms here post straight to that API. A submission therefore
// yields the endpoint's JSON reply, not a re-rendered page; the views
// are a skeleton for script-driven clients, not a full no-script UI.
package views

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/manmohanbh/tubestream-pwa-v2/internal/app"
	"github.com/manmohanbh/tubestream-pwa-v2/pkg/models"
)

// Base wraps a view in the shared page skeleton with the bottom navigation
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title></head><body><header><h1>TUBE<span class="accent">STREAM</span></h1></header><main>`, html.EscapeString(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main><nav><a href="/">Paste</a><a href="/library">Library</a><a href="/settings">Settings</a><a href="/help">Help</a></nav></body></html>`)
		return err
	})
}

// Home renders the analyze form and, when ready, the current record
// with its format catalog.
func Home(state app.State) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		mode := "SANDBOX MODE"
		if state.ProEngineOn {
			mode = "PRO ENGINE ACTIVE"
		}
		if _, err := fmt.Fprintf(w, `<p class="mode">%s</p><form method="post" action="/api/analyze"><input type="text" name="url" placeholder="Paste YouTube or Shorts URL..." value="%s"><button type="submit">Analyze</button></form>`, mode, html.EscapeString(state.CurrentURL)); err != nil {
			return err
		}

		if state.LastError != "" {
			if _, err := fmt.Fprintf(w, `<p class="error">%s</p>`, html.EscapeString(state.LastError)); err != nil {
				return err
			}
		}

		if state.Current != nil {
			if err := videoCard(w, state.Current); err != nil {
				return err
			}
			if err := formatList(w, state.Current.Formats); err != nil {
				return err
			}
		}

		if state.Progress.IsDownloading {
			if _, err := fmt.Fprintf(w, `<div class="progress"><span>%s</span><span>%d%%</span></div>`, html.EscapeString(state.Progress.Speed), int(state.Progress.Progress)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Library renders the analysis history, most recent first
func Library(history []*models.VideoRecord) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h2>Recent Library</h2>`); err != nil {
			return err
		}
		if len(history) == 0 {
			_, err := io.WriteString(w, `<p class="empty">Your history is empty. Analyze a video to see it here.</p>`)
			return err
		}
		for _, record := range history {
			if _, err := fmt.Fprintf(w, `<form method="post" action="/api/history/%s/select"><button type="submit"><img src="%s" alt=""><span>%s</span><span>%s • %s</span></button></form>`,
				html.EscapeString(record.ID),
				html.EscapeString(record.Thumbnail),
				html.EscapeString(record.Title),
				html.EscapeString(record.Author),
				html.EscapeString(record.Duration),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// Settings renders the backend endpoint form and history controls
func Settings(backendURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h2>System Settings</h2><form method="post" action="/api/settings"><label>Backend URL</label><input type="text" name="backend_url" placeholder="https://your-backend.up.railway.app" value="%s"><button type="submit">Save &amp; Activate Pro Mode</button></form><form method="post" action="/api/history/clear"><button type="submit">Clear History &amp; Cache</button></form>`, html.EscapeString(backendURL))
		return err
	})
}

// Help renders the deployment walkthrough
func Help() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<h2>Deployment</h2><ol><li>Deploy the download backend to your hosting provider.</li><li>Copy its public URL.</li><li>Paste it into the Settings view to enable real downloads.</li></ol>`)
		return err
	})
}

func videoCard(w io.Writer, record *models.VideoRecord) error {
	badge := ""
	if record.Type == models.TypeShorts {
		badge = `<span class="badge">Shorts</span>`
	}
	_, err := fmt.Fprintf(w, `<section class="video-card"><img src="%s" alt=""><h3>%s</h3>%s<p>%s • %s</p></section>`,
		html.EscapeString(record.Thumbnail),
		html.EscapeString(record.Title),
		badge,
		html.EscapeString(record.Author),
		html.EscapeString(record.Duration),
	)
	return err
}

func formatList(w io.Writer, formats []models.FormatOption) error {
	if _, err := io.WriteString(w, `<ul class="formats">`); err != nil {
		return err
	}
	for _, f := range formats {
		if _, err := fmt.Fprintf(w, `<li><form method="post" action="/api/download"><input type="hidden" name="format" value="%s"><button type="submit">%s (%s)</button></form></li>`,
			html.EscapeString(f.ID),
			html.EscapeString(f.Label),
			html.EscapeString(f.Size),
		); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</ul>`)
	return err
}
