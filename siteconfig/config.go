package siteconfig

import "fmt"

// Config is the site configuration handed to the documentation renderer.
type Config struct {
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description" yaml:"description"`
	Head        []HeadTag        `json:"head" yaml:"head"`
	Nav         []NavItem        `json:"nav" yaml:"nav"`
	Sidebar     []SidebarSection `json:"sidebar" yaml:"sidebar"`
	SocialLinks []SocialLink     `json:"socialLinks" yaml:"socialLinks"`
}

// NavItem is a single navigation entry.
type NavItem struct {
	Text string `json:"text" yaml:"text"`
	Link string `json:"link" yaml:"link"`
}

// SidebarSection groups navigation entries under a heading. Items may be empty.
type SidebarSection struct {
	Text  string    `json:"text" yaml:"text"`
	Items []NavItem `json:"items,omitempty" yaml:"items,omitempty"`
}

// SocialLink points at an external profile, identified by an icon name.
type SocialLink struct {
	Icon string `json:"icon" yaml:"icon"`
	Link string `json:"link" yaml:"link"`
}

// LinkKind distinguishes the origin of a link reported by Links.
type LinkKind int

const (
	KindNav LinkKind = iota
	KindSidebar
	KindSocial
)

func (k LinkKind) String() string {
	switch k {
	case KindNav:
		return "nav"
	case KindSidebar:
		return "sidebar"
	case KindSocial:
		return "social"
	default:
		return "unknown"
	}
}

// LinkRef is a link together with where it was declared.
type LinkRef struct {
	Location string
	Kind     LinkKind
	Text     string
	Link     string
}

// Links walks every navigation, sidebar and social link in declaration order.
func (c *Config) Links() []LinkRef {
	if c == nil {
		return nil
	}
	refs := make([]LinkRef, 0, len(c.Nav)+len(c.SocialLinks)+4)
	for i, item := range c.Nav {
		refs = append(refs, LinkRef{
			Location: fmt.Sprintf("nav[%d]", i),
			Kind:     KindNav,
			Text:     item.Text,
			Link:     item.Link,
		})
	}
	for i, section := range c.Sidebar {
		for j, item := range section.Items {
			refs = append(refs, LinkRef{
				Location: fmt.Sprintf("sidebar[%d].items[%d]", i, j),
				Kind:     KindSidebar,
				Text:     item.Text,
				Link:     item.Link,
			})
		}
	}
	for i, social := range c.SocialLinks {
		refs = append(refs, LinkRef{
			Location: fmt.Sprintf("socialLinks[%d]", i),
			Kind:     KindSocial,
			Text:     social.Icon,
			Link:     social.Link,
		})
	}
	return refs
}

// Clone returns a deep copy. An empty sidebar items list comes back nil, matching
// what decoding produces for a section without items.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{
		Title:       c.Title,
		Description: c.Description,
	}
	if c.Head != nil {
		out.Head = make([]HeadTag, len(c.Head))
		for i, tag := range c.Head {
			out.Head[i] = tag.clone()
		}
	}
	if c.Nav != nil {
		out.Nav = append([]NavItem(nil), c.Nav...)
	}
	if c.Sidebar != nil {
		out.Sidebar = make([]SidebarSection, len(c.Sidebar))
		for i, section := range c.Sidebar {
			out.Sidebar[i] = SidebarSection{Text: section.Text}
			if len(section.Items) > 0 {
				out.Sidebar[i].Items = append([]NavItem(nil), section.Items...)
			}
		}
	}
	if c.SocialLinks != nil {
		out.SocialLinks = append([]SocialLink(nil), c.SocialLinks...)
	}
	return out
}
