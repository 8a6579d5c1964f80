package layout

import "sync"

// Compositor tracks the active page, the content target and the window size.
// Every change recomputes the whole frame.
type Compositor struct {
	mu        sync.Mutex
	menuWidth int
	width     int
	height    int
	minWidth  int
	minHeight int
	page      Page
	target    string
	frame     Frame
}

func NewCompositor(menuWidth, width, height int) *Compositor {
	c := &Compositor{menuWidth: menuWidth, width: width, height: height, page: PageHome}
	c.frame = Compute(c.page, width, height, menuWidth)
	return c
}

// NavigateHome shows Home and drops the content target.
func (c *Compositor) NavigateHome() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = ""
	return c.setLocked(PageHome)
}

// NavigateSettings shows Settings and hides both Home and Content.
func (c *Compositor) NavigateSettings() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setLocked(PageSettings)
}

func (c *Compositor) NavigateContent(target string) Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	return c.setLocked(PageContent)
}

// SetMinSize makes later resizes report at least width x height. Zero means no
// minimum.
func (c *Compositor) SetMinSize(width, height int) Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minWidth, c.minHeight = max(width, 0), max(height, 0)
	c.width, c.height = max(c.width, c.minWidth), max(c.height, c.minHeight)
	return c.setLocked(c.page)
}

func (c *Compositor) OnResize(width, height int) Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = max(width, c.minWidth), max(height, c.minHeight)
	return c.setLocked(c.page)
}

func (c *Compositor) Page() Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Target is the URL last loaded into the content region.
func (c *Compositor) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *Compositor) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

func (c *Compositor) Region(id RegionID) Region {
	return c.Frame().Region(id)
}

func (c *Compositor) setLocked(p Page) Frame {
	c.page = p
	c.frame = Compute(p, c.width, c.height, c.menuWidth)
	return c.frame
}
