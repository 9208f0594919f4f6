package render

import (
	"cine-grid/grid"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var gridTemplate = template.Must(template.ParseFS(templateFS, "templates/grid.html.tmpl"))

// Renderer writes a layout in one output format
type Renderer interface {
	Render(w io.Writer, layout grid.Layout) error
	ContentType() string
}

// Options are shared by every format
type Options struct {
	Title       string
	CanvasWidth int
}

// ForFormat returns the renderer for html, json or text
func ForFormat(format string, opts Options) (Renderer, error) {
	switch format {
	case "html":
		return &HTML{Title: opts.Title, CanvasWidth: opts.CanvasWidth}, nil
	case "json":
		return &JSON{}, nil
	case "text":
		return &Text{Title: opts.Title}, nil
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}

// Title builds the heading shown above a chart
func Title(username string, year int) string {
	return fmt.Sprintf("%s's %d in ratings", username, year)
}

// HTML draws the poster grid as a standalone page
type HTML struct {
	Title       string
	CanvasWidth int
	Now         func() time.Time
}

func (h *HTML) ContentType() string { return "text/html" }

func (h *HTML) Render(w io.Writer, layout grid.Layout) error {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	width := h.CanvasWidth
	if width <= 0 {
		width = grid.DefaultCanvasWidth
	}

	data := struct {
		Title        string
		CanvasWidth  int
		AspectWidth  int
		AspectHeight int
		Generated    string
		Layout       grid.Layout
	}{
		Title:        h.Title,
		CanvasWidth:  width,
		AspectWidth:  grid.PosterAspectWidth,
		AspectHeight: grid.PosterAspectHeight,
		Generated:    now().Format("January 2, 2006 at 3:04 PM"),
		Layout:       layout,
	}

	if err := gridTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render html template: %w", err)
	}
	return nil
}

// JSON writes the layout description itself
type JSON struct{}

func (j *JSON) ContentType() string { return "application/json" }

func (j *JSON) Render(w io.Writer, layout grid.Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(layout); err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	return nil
}

// Text draws a bar chart with one line per bucket
type Text struct {
	Title string
}

func (t *Text) ContentType() string { return "text/plain" }

func (t *Text) Render(w io.Writer, layout grid.Layout) error {
	var b strings.Builder
	if t.Title != "" {
		b.WriteString(t.Title)
		b.WriteString("\n\n")
	}
	if !layout.Empty {
		for _, row := range layout.Rows {
			fmt.Fprintf(&b, "%2s | %-*s %d\n", row.Label, layout.Columns-1, strings.Repeat("#", len(row.Cells)), len(row.Cells))
		}
	}
	fmt.Fprintf(&b, "\n%d rated", layout.Total)
	if layout.Excluded > 0 {
		fmt.Fprintf(&b, ", %d excluded", layout.Excluded)
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
