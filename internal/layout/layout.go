package layout

import "fmt"

type Page int

const (
	PageHome Page = iota
	PageSettings
	PageContent
)

func (p Page) String() string {
	switch p {
	case PageHome:
		return "home"
	case PageSettings:
		return "settings"
	case PageContent:
		return "content"
	default:
		return fmt.Sprintf("page(%d)", int(p))
	}
}

func (p Page) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

type RegionID string

const (
	Menu     RegionID = "menu"
	Home     RegionID = "home"
	Settings RegionID = "settings"
	Content  RegionID = "content"
)

// Regions lists every region in drawing order.
var Regions = []RegionID{Menu, Home, Settings, Content}

type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

type Region struct {
	ID      RegionID `json:"id"`
	Bounds  Rect     `json:"bounds"`
	Visible bool     `json:"visible"`
}

// Frame is the geometry of every region for one page and window size.
type Frame struct {
	Page    Page     `json:"page"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Regions []Region `json:"regions"`
}

func (f Frame) Region(id RegionID) Region {
	for _, r := range f.Regions {
		if r.ID == id {
			return r
		}
	}
	return Region{ID: id}
}

// Active is the visible page region.
func (f Frame) Active() Region {
	return f.Region(pageRegion(f.Page))
}

func pageRegion(p Page) RegionID {
	switch p {
	case PageSettings:
		return Settings
	case PageContent:
		return Content
	default:
		return Home
	}
}

// Compute lays out the menu on the left and the page for p beside it; the
// other pages get zero bounds.
func Compute(p Page, width, height, menuWidth int) Frame {
	width = max(width, 0)
	height = max(height, 0)
	menuWidth = clamp(menuWidth, 0, width)

	active := pageRegion(p)
	f := Frame{Page: p, Width: width, Height: height, Regions: make([]Region, 0, len(Regions))}
	for _, id := range Regions {
		switch id {
		case Menu:
			f.Regions = append(f.Regions, Region{ID: Menu, Bounds: Rect{X: 0, Y: 0, Width: menuWidth, Height: height}, Visible: true})
		case active:
			f.Regions = append(f.Regions, Region{ID: id, Bounds: Rect{X: menuWidth, Y: 0, Width: width - menuWidth, Height: height}, Visible: true})
		default:
			f.Regions = append(f.Regions, Region{ID: id})
		}
	}
	return f
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
