package cache

// LayoutKeyOpts are the inputs that change a layout besides the graph.
type LayoutKeyOpts struct {
	Engine        string  `json:"engine"`
	RankSep       float64 `json:"rank_sep"`
	NodeSep       float64 `json:"node_sep"`
	MarginX       float64 `json:"margin_x"`
	MarginY       float64 `json:"margin_y"`
	NodeWidth     float64 `json:"node_width"`
	BaseHeight    float64 `json:"base_height"`
	SummaryHeight float64 `json:"summary_height"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact besides the
// projection it was rendered from.
type ArtifactKeyOpts struct {
	Format        string `json:"format"`
	ShowSummaries bool   `json:"show_summaries,omitempty"`
	Background    string `json:"background,omitempty"`
	DetailedDOT   bool   `json:"detailed_dot,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// DocumentKey identifies a raw document fetched from a named source.
	DocumentKey(namespace, key string) string

	// GraphKey identifies the graph built from a document with the given hash.
	GraphKey(docHash string) string

	// LayoutKey identifies a layout of the graph with the given hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies an artifact rendered from a projection.
	ArtifactKey(viewHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces plain, unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DocumentKey implements Keyer.
func (DefaultKeyer) DocumentKey(namespace, key string) string {
	return "doc:" + namespace + ":" + key
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(docHash string) string {
	return "graph:" + docHash
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(viewHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", viewHash, opts)
}

var _ Keyer = DefaultKeyer{}
