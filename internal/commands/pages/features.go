package pagescmd

// FeatureGates exposes runtime feature toggles required by page command handlers.
// Callers can inject closures wired to the module configuration to avoid tight
// coupling between handlers and configuration packages.
type FeatureGates struct {
	// VersioningEnabled should return true when page versioning workflows are enabled.
	VersioningEnabled func() bool
}

func (g FeatureGates) versioningEnabled() bool {
	if g.VersioningEnabled == nil {
		return true
	}
	return g.VersioningEnabled()
}
