package ir

// Version constants for the store and its trace format.
const (
	// TraceVersion is the version of the scenario trace format.
	TraceVersion = "1"

	// StoreVersion is the notestore version.
	StoreVersion = "0.1.0"
)
