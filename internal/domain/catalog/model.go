package catalog

// Details holds the scraped fields of one spot page.
type Details struct {
	SpotDescription    string         `json:"Spot Description"`
	DirectionOfWave    string         `json:"Direction of Wave"`
	TypeOfBottom       string         `json:"Type of Bottom"`
	StarRatings        map[string]int `json:"Star Ratings,omitempty"`
	SurfLevelBoxColors []string       `json:"Surf Level Box Colors,omitempty"`
	BestTideBoxColors  []string       `json:"Best Tide Box Colors,omitempty"`
}

// Entry is one raw catalog record.
type Entry struct {
	URL     string  `json:"url"`
	Details Details `json:"details"`
}

// Config wires runtime settings for ingestion.
type Config struct {
	BatchSize int
	Dimension int
}

// IngestResult summarizes an ingestion run.
type IngestResult struct {
	Loaded   int `json:"loaded"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
}
