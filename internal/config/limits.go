package config

// Context assembly caps. These bound prompt size so every generation request
// is roughly constant-cost regardless of how large a proposal grows.
const (
	// MaxPriorContextSections is how many earlier same-proposal sections are
	// included in a generation prompt.
	MaxPriorContextSections = 5

	// PriorSectionExcerptChars is the per-section truncation budget for
	// prior-section excerpts.
	PriorSectionExcerptChars = 300

	// MaxComplianceItems caps compliance requirements per prompt.
	MaxComplianceItems = 10

	// MaxPastPerformance caps past-performance records per prompt.
	MaxPastPerformance = 5
)

const (
	// MaxReferenceFiles caps the reference file pointers forwarded to the
	// text-generation oracle.
	MaxReferenceFiles = 10

	// MaxSuggestions caps how many reuse suggestions one ranking run keeps.
	MaxSuggestions = 5
)

const (
	// MaxSectionKeyLength bounds section keys, composite keys included.
	MaxSectionKeyLength = 120

	// MaxSummaryLength bounds change summaries on versions.
	MaxSummaryLength = 500
)
