// Package navigation carries the per-page navigation state the base layout
// renders: breadcrumbs, the active navbar entry and the page title.
package navigation

// BreadcrumbItem is one link of the breadcrumb trail.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// Context is the navigation state of one rendered page.
type Context struct {
	// ActiveSection is the navbar group the page belongs to (courses, admin).
	ActiveSection string
	// ActivePage identifies the page within its section.
	ActivePage string
	// Breadcrumbs is the trail from the portal root to this page.
	Breadcrumbs []BreadcrumbItem
	// PageTitle is rendered into the document title.
	PageTitle string
	// UserName is the display name of the signed-in user, empty on the
	// sign-in pages.
	UserName string
	// SiteAdmin shows the admin navbar entries when true.
	SiteAdmin bool
}

// NewContext creates the navigation context of a page.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// AddBreadcrumb appends one trail entry and returns the context for chaining.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// WithUser fills the signed-in user display fields and returns the context
// for chaining.
func (c *Context) WithUser(name string, siteAdmin bool) *Context {
	c.UserName = name
	c.SiteAdmin = siteAdmin

	return c
}

// IsActive reports whether the given section and page match this context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive reports whether the given navbar section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}
