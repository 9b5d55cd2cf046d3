package prompt

import "gemma/internal/types"

// StepInfo is the sidebar metadata for one wizard step. URL, when set,
// is the government filing page for that step.
type StepInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

// StepsInfo maps every step to its display metadata.
var StepsInfo = map[types.Step]StepInfo{
	// Incorporate
	types.StepOnboarding:          {Title: "Welcome", Description: "Getting Started"},
	types.StepMissionName:         {Title: "Mission & Name", Description: "Define purpose & check availability", URL: "https://www.sos.state.tx.us/corp/sosda/index.shtml"},
	types.StepBoardFormation:      {Title: "Board Formation", Description: "Directors & Officers"},
	types.StepIncorporation:       {Title: "Incorporation", Description: "File Form 202", URL: "https://www.sos.state.tx.us/corp/sosda/index.shtml"},
	types.StepEIN:                 {Title: "EIN Issuance", Description: "Get Tax ID", URL: "https://sa.www4.irs.gov/modiein/individual/index.jsp"},
	types.StepBylaws:              {Title: "Bylaws", Description: "Internal governance documents"},
	types.StepFederalTaxExemption: {Title: "Federal 501(c)(3)", Description: "Form 1023-EZ", URL: "https://www.pay.gov/public/form/start/62754889"},
	types.StepStateTaxExemption:   {Title: "State Exemption", Description: "Form AP-204"},
	types.StepBranding:            {Title: "Branding", Description: "Visual Identity"},
	types.StepMaintenance:         {Title: "Compliance", Description: "Ongoing requirements"},

	// Promote
	types.StepBrandIdentity:   {Title: "Brand Identity", Description: "Logos, Colors & Tone"},
	types.StepOnlinePresence:  {Title: "Online Presence", Description: "Website & Social Setup"},
	types.StepAcceptDonations: {Title: "Accept Donations", Description: "Setup Payment Links"},
	types.StepFundraising:     {Title: "Fundraising", Description: "Campaigns & Events"},
	types.StepGrantSearch:     {Title: "Grant Search", Description: "Find & Apply for Funding"},

	// Manage
	types.StepFederalFiling:   {Title: "Federal Filing", Description: "File Form 990-N (Annual)"},
	types.StepStateReport:     {Title: "State Report", Description: "File Form 802 (Every 4 yrs)"},
	types.StepBoardMeetings:   {Title: "Board Meetings", Description: "Record Annual Minutes"},
	types.StepBookkeeping:     {Title: "Bookkeeping", Description: "Track Income & Expenses"},
	types.StepComplianceCheck: {Title: "Compliance Check", Description: "Review 'Good Standing' Status"},

	// Measure
	types.StepMeasureDashboard: {Title: "Dashboard", Description: "Overview of Key Metrics"},
	types.StepImpactTracking:   {Title: "Impact Tracking", Description: "Log Program Outcomes"},
	types.StepDonorAnalytics:   {Title: "Donor Analytics", Description: "Retention & Growth Stats"},
	types.StepCustomReports:    {Title: "Custom Reports", Description: "Export Data for Stakeholders"},
}
