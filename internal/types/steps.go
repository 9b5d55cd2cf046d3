package types

// Section is a top-level workspace mode. Each section owns a numeric
// band of steps.
type Section string

const (
	SectionIncorporate Section = "Incorporate"
	SectionPromote     Section = "Promote"
	SectionManage      Section = "Manage"
	SectionMeasure     Section = "Measure"
)

// Step is the wizard position within a section. Values are grouped in
// bands: Incorporate 0-9, Promote 100-104, Manage 200-204, Measure 300-303.
type Step int

const (
	// Incorporate
	StepOnboarding          Step = 0
	StepMissionName         Step = 1
	StepBoardFormation      Step = 2
	StepIncorporation       Step = 3
	StepEIN                 Step = 4
	StepBylaws              Step = 5
	StepFederalTaxExemption Step = 6
	StepStateTaxExemption   Step = 7
	StepBranding            Step = 8
	StepMaintenance         Step = 9

	// Promote
	StepBrandIdentity   Step = 100
	StepOnlinePresence  Step = 101
	StepAcceptDonations Step = 102
	StepFundraising     Step = 103
	StepGrantSearch     Step = 104

	// Manage
	StepFederalFiling   Step = 200
	StepStateReport     Step = 201
	StepBoardMeetings   Step = 202
	StepBookkeeping     Step = 203
	StepComplianceCheck Step = 204

	// Measure
	StepMeasureDashboard Step = 300
	StepImpactTracking   Step = 301
	StepDonorAnalytics   Step = 302
	StepCustomReports    Step = 303
)

// ValidStep reports whether n is a member of the step enumeration.
func ValidStep(n int) bool {
	switch {
	case n >= 0 && n <= 9:
		return true
	case n >= 100 && n <= 104:
		return true
	case n >= 200 && n <= 204:
		return true
	case n >= 300 && n <= 303:
		return true
	}
	return false
}

// SectionForStep returns the section that owns the step's numeric band.
// The second return is false when the step is not in any band.
func SectionForStep(s Step) (Section, bool) {
	switch {
	case s >= 0 && s <= 9:
		return SectionIncorporate, true
	case s >= 100 && s <= 104:
		return SectionPromote, true
	case s >= 200 && s <= 204:
		return SectionManage, true
	case s >= 300 && s <= 303:
		return SectionMeasure, true
	}
	return "", false
}

// DefaultStepForSection returns the landing step used when the user
// switches sections directly (not via a step directive).
func DefaultStepForSection(sec Section) Step {
	switch sec {
	case SectionPromote:
		return StepBrandIdentity
	case SectionManage:
		return StepFederalFiling
	case SectionMeasure:
		return StepMeasureDashboard
	default:
		// Revisiting Incorporate skips the onboarding chat.
		return StepMissionName
	}
}

// ParseSection maps a section name (as emitted by the model in
// navigate_to_step calls) to a Section.
func ParseSection(name string) (Section, bool) {
	switch Section(name) {
	case SectionIncorporate, SectionPromote, SectionManage, SectionMeasure:
		return Section(name), true
	}
	return "", false
}

// stepNames maps the symbolic step names used in navigate_to_step calls
// to their numeric steps.
var stepNames = map[string]Step{
	"Onboarding":          StepOnboarding,
	"MissionName":         StepMissionName,
	"BoardFormation":      StepBoardFormation,
	"Incorporation":       StepIncorporation,
	"EIN":                 StepEIN,
	"Bylaws":              StepBylaws,
	"FederalTaxExemption": StepFederalTaxExemption,
	"StateTaxExemption":   StepStateTaxExemption,
	"Branding":            StepBranding,
	"Maintenance":         StepMaintenance,
	"BrandIdentity":       StepBrandIdentity,
	"OnlinePresence":      StepOnlinePresence,
	"AcceptDonations":     StepAcceptDonations,
	"Fundraising":         StepFundraising,
	"GrantSearch":         StepGrantSearch,
	"FederalFiling":       StepFederalFiling,
	"StateReport":         StepStateReport,
	"BoardMeetings":       StepBoardMeetings,
	"Bookkeeping":         StepBookkeeping,
	"ComplianceCheck":     StepComplianceCheck,
	"MeasureDashboard":    StepMeasureDashboard,
	"ImpactTracking":      StepImpactTracking,
	"DonorAnalytics":      StepDonorAnalytics,
	"CustomReports":       StepCustomReports,
}

// ParseStepName maps a symbolic step name to its numeric step.
func ParseStepName(name string) (Step, bool) {
	s, ok := stepNames[name]
	return s, ok
}
