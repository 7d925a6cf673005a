package cache

// Keyer derives cache keys from render inputs.
type Keyer interface {
	// ArtifactKey returns the key of an encoded render of the base image
	// with hash baseHash under opts.
	ArtifactKey(baseHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts fingerprints everything besides the base image that
// changes the output bytes. Hash fields of a disabled pass stay empty.
type ArtifactKeyOpts struct {
	Labels      string `json:"labels,omitempty"`       // hash of label records
	LabelStyle  string `json:"label_style,omitempty"`  // hash of label style
	Markers     string `json:"markers,omitempty"`      // hash of marker records
	MarkerStyle string `json:"marker_style,omitempty"` // hash of marker style
	Format      string `json:"format"`                 // output encoding, e.g. "png"
}

// DefaultKeyer produces unprefixed content-hash keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(baseHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", baseHash, opts)
}
