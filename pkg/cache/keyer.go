package cache

// Keyer generates cache keys.
type Keyer interface {
	// SnapshotKey identifies the stored snapshot of one owner.
	SnapshotKey(owner string) string
	// LayoutKey identifies a layout computed from a snapshot with given options.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists the layout options that change the computed layout.
type LayoutKeyOpts struct {
	TrunkX      float64 `json:"trunk_x"`
	SideX       float64 `json:"side_x"`
	RowHeight   float64 `json:"row_height"`
	OffsetY     float64 `json:"offset_y"`
	HeaderLabel string  `json:"header_label"`
	NoHeader    bool    `json:"no_header"`
	DateFormat  string  `json:"date_format"`
	SideOrder   string  `json:"side_order"`
}

// ArtifactKeyOpts lists the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Detailed bool    `json:"detailed"`
	NodeSize float64 `json:"node_size"`
}

// DefaultKeyer builds keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SnapshotKey implements Keyer.
func (DefaultKeyer) SnapshotKey(owner string) string {
	return "snapshot:" + owner
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", snapshotHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
