package scraper

// Selectors locate the notice table on the board page. Lists are tried in
// order so a site markup change can be absorbed from config without a
// rebuild. Defaults match the RGCCR notice category page.
type Selectors struct {
	Table string   `yaml:"table"`
	Rows  string   `yaml:"rows"`
	Title []string `yaml:"title_selectors"`
	Date  []string `yaml:"date_selectors"`
	Link  []string `yaml:"link_selectors"`
}

func (s *Selectors) ApplyDefaults() {
	if s.Table == "" {
		s.Table = "table.table-striped"
	}
	if s.Rows == "" {
		s.Rows = "tbody tr"
	}
	if len(s.Title) == 0 {
		s.Title = []string{"td:nth-child(1)"}
	}
	if len(s.Date) == 0 {
		s.Date = []string{"td:nth-child(2)"}
	}
	if len(s.Link) == 0 {
		s.Link = []string{"td:nth-child(3) a", "td a"}
	}
}
