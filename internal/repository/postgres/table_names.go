package postgres

import "fmt"

// TableNames holds dynamically prefixed table names so dev/test/prod share a
// database without colliding.
type TableNames struct {
	Proposals           string
	Sections            string
	Versions            string
	Suggestions         string
	ComplianceItems     string
	WinThemes           string
	PastPerformance     string
	PartnerCapabilities string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Proposals:           fmt.Sprintf("%sproposals", prefix),
		Sections:            fmt.Sprintf("%ssections", prefix),
		Versions:            fmt.Sprintf("%ssection_versions", prefix),
		Suggestions:         fmt.Sprintf("%sreuse_suggestions", prefix),
		ComplianceItems:     fmt.Sprintf("%scompliance_items", prefix),
		WinThemes:           fmt.Sprintf("%swin_themes", prefix),
		PastPerformance:     fmt.Sprintf("%spast_performance", prefix),
		PartnerCapabilities: fmt.Sprintf("%spartner_capabilities", prefix),
	}
}
