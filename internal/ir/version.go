package ir

// Version constants for the ontology schema and engine.
const (
	// OntologyVersion is the predicate vocabulary version.
	OntologyVersion = "1"

	// EngineVersion is the Loom engine version.
	EngineVersion = "0.1.0"
)
