package spots

import "time"

// Metadata keys stored alongside every spot vector.
const (
	MetaName        = "name"
	MetaDescription = "spot_description"
	MetaDirection   = "direction_of_wave"
	MetaBottom      = "type_of_bottom"
)

// NotSpecified is the label used when a derived field cannot be read from the description.
const NotSpecified = "Not Specified"

// MaxTopK caps how many spots a single request may ask for.
const MaxTopK = 10

var (
	directions = []string{"Right", "Left", "Left and right"}
	bottoms    = []string{"Reef", "Sand", "Sand with rocks"}
)

// Directions lists the canonical wave direction values.
func Directions() []string {
	return append([]string(nil), directions...)
}

// Bottoms lists the canonical bottom type values.
func Bottoms() []string {
	return append([]string(nil), bottoms...)
}

// SpotRecord is one ranked surf spot returned to callers.
type SpotRecord struct {
	SpotID         string  `json:"spotId"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	WaveDirection  string  `json:"waveDirection"`
	BottomType     string  `json:"bottomType"`
	RelevanceScore float64 `json:"relevanceScore"`
	SurfLevel      string  `json:"surfLevel"`
	CrowdFactor    string  `json:"crowdFactor"`
}

// Query captures a retrieval request.
type Query struct {
	Text      string `json:"query"`
	Direction string `json:"direction"`
	Bottom    string `json:"bottom"`
	TopK      int    `json:"topK"`
}

// Filter is an exact-match constraint on the two categorical spot attributes.
type Filter struct {
	Direction string
	Bottom    string
}

// Fields exposes the filter as metadata key/value pairs.
func (f Filter) Fields() map[string]string {
	return map[string]string{
		MetaDirection: f.Direction,
		MetaBottom:    f.Bottom,
	}
}

// IndexQuery is what the retriever asks of the vector index.
type IndexQuery struct {
	Vector          []float32
	TopK            int
	Filter          Filter
	IncludeMetadata bool
}

// Match is one nearest-neighbour hit.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// SpotVector is an embedded catalog entry ready for upsert.
type SpotVector struct {
	ID       string
	Values   []float32
	Metadata map[string]string
}

// Config wires runtime settings for the retriever.
type Config struct {
	Dimension     int
	EmbedTimeout  time.Duration
	SearchTimeout time.Duration
}
