package grid

import "strings"

const (
	// DefaultLinkBase prefixes every review link
	DefaultLinkBase = "https://letterboxd.com"

	// DefaultCanvasWidth matches the width the chart was originally drawn at
	DefaultCanvasWidth = 800

	// Poster cells keep a 70:105 aspect ratio
	PosterAspectWidth  = 70
	PosterAspectHeight = 105
)

// LayoutOptions controls how BuildLayout arranges the grid
type LayoutOptions struct {
	NewestFirst bool
	LinkBase    string
	CanvasWidth int
}

// Cell is a single poster in a row
type Cell struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Rewatch   bool   `json:"rewatch"`
	Thumbnail string `json:"thumbnail"`
	Href      string `json:"href"`
}

// Row is one bucket of the grid
type Row struct {
	Label Bucket `json:"label"`
	Cells []Cell `json:"cells"`
}

// Layout is a render-ready description of the poster grid
type Layout struct {
	Rows             []Row   `json:"rows"`
	Columns          int     `json:"columns"`
	CellWidthPercent float64 `json:"cell_width_percent"`
	CellWidthPx      float64 `json:"cell_width_px"`
	CellHeightPx     float64 `json:"cell_height_px"`
	AspectRatio      string  `json:"aspect_ratio"`
	Total            int     `json:"total"`
	Excluded         int     `json:"excluded"`
	Empty            bool    `json:"empty"`
}

// BuildLayout groups reviews and lays them out from the highest bucket down.
func BuildLayout(reviews []Review, opts LayoutOptions) Layout {
	if opts.LinkBase == "" {
		opts.LinkBase = DefaultLinkBase
	}
	if opts.CanvasWidth <= 0 {
		opts.CanvasWidth = DefaultCanvasWidth
	}
	linkBase := strings.TrimRight(opts.LinkBase, "/")

	groups := Group(reviews)
	columns := groups.MaxCount()
	cellWidth := ComputeLayoutWidth(groups, float64(opts.CanvasWidth))

	layout := Layout{
		Rows:             make([]Row, 0, len(Buckets)),
		Columns:          columns,
		CellWidthPercent: CellWidthPercent(groups),
		CellWidthPx:      cellWidth,
		CellHeightPx:     cellWidth * PosterAspectHeight / PosterAspectWidth,
		AspectRatio:      "70 / 105",
		Total:            groups.Total(),
	}
	layout.Excluded = len(reviews) - layout.Total
	layout.Empty = layout.Total == 0

	for i := len(Buckets) - 1; i >= 0; i-- {
		b := Buckets[i]
		bucket := groups[b]
		cells := make([]Cell, len(bucket))
		for j, r := range bucket {
			idx := j
			if opts.NewestFirst {
				idx = len(bucket) - 1 - j
			}
			cells[idx] = Cell{
				Title:     r.Title,
				Date:      r.Date,
				Rewatch:   r.Rewatch,
				Thumbnail: r.Thumbnail,
				Href:      joinLink(linkBase, r.Link),
			}
		}
		layout.Rows = append(layout.Rows, Row{Label: b, Cells: cells})
	}

	return layout
}

func joinLink(base, link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if link != "" && !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return base + link
}
