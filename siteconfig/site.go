package siteconfig

// Site returns the configuration of the Road documentation site.
// Each call builds a new tree, so callers may modify the result freely.
func Site() *Config {
	return &Config{
		Title:       "Road",
		Description: "My Road",
		Head: []HeadTag{
			{Name: "link", Attrs: map[string]string{"rel": "icon", "href": "/motorway.ico"}},
		},
		Nav: []NavItem{
			{Text: "Home", Link: "/"},
			{Text: "Libs", Link: "/libs"},
		},
		Sidebar: []SidebarSection{
			{
				Text: "Frontend",
				Items: []NavItem{
					{Text: "架构", Link: "/frontend/architecture"},
				},
			},
			{Text: "Backend"},
		},
		SocialLinks: []SocialLink{
			{Icon: "github", Link: "https://github.com/awsssrD"},
		},
	}
}
