// Package chat owns the conversation state aggregate and the turn
// controller that orchestrates one user turn end to end.
package chat

import (
	"gemma/internal/types"
)

// State is the conversation state aggregate. It is mutated only via
// Apply with whole-field-replacement patches at the end of a turn, so
// the renderer never sees half-updated state.
type State struct {
	Messages       []types.Message     `json:"messages"`
	CurrentSection types.Section       `json:"currentSection"`
	CurrentStep    types.Step          `json:"currentStep"`
	Branding       *types.BrandingData `json:"brandingData,omitempty"`
	Provision      string              `json:"supplementalProvisionText,omitempty"`
	Organization   types.Organization  `json:"organization"`
	BoardMembers   []types.BoardMember `json:"boardMembers"`
	BrowserURL     string              `json:"browserUrl,omitempty"`
	Campaign       types.CampaignData  `json:"campaignData"`
}

// NewState creates the initial conversation state for an organization.
func NewState(orgID string) *State {
	return &State{
		CurrentSection: types.SectionIncorporate,
		CurrentStep:    types.StepOnboarding,
		Organization:   types.NewOrganization(orgID),
	}
}

// Patch is one whole-field-replacement update. Nil fields leave the
// corresponding state untouched.
type Patch struct {
	Step            *types.Step
	Section         *types.Section
	Palette         *types.BrandingData
	OrgName         *string
	Provision       *string
	BrowserURL      *string
	NewBoardMembers []types.BoardMember
	GeneratedImages []string
}

// Apply merges a patch into the state. The section always follows the
// step's numeric band, so the two can never disagree. Board members are
// append-only; the palette is replaced wholesale.
func (s *State) Apply(p Patch) {
	if p.Section != nil && p.Step == nil {
		// Section switch without an explicit step lands on the
		// section's default step.
		step := types.DefaultStepForSection(*p.Section)
		p.Step = &step
	}
	if p.Step != nil {
		s.CurrentStep = *p.Step
		if sec, ok := types.SectionForStep(*p.Step); ok {
			s.CurrentSection = sec
		}
	}
	if p.Palette != nil {
		palette := *p.Palette
		s.Branding = &palette
	}
	if p.OrgName != nil {
		s.Organization.Rename(*p.OrgName)
	}
	if p.Provision != nil {
		s.Provision = *p.Provision
	}
	if p.BrowserURL != nil {
		s.BrowserURL = *p.BrowserURL
	}
	if len(p.NewBoardMembers) > 0 {
		s.BoardMembers = append(s.BoardMembers, p.NewBoardMembers...)
	}
	if len(p.GeneratedImages) > 0 {
		s.Campaign.GeneratedImages = append(s.Campaign.GeneratedImages, p.GeneratedImages...)
	}
}

// AppendMessage appends one transcript message. The transcript is
// append-only.
func (s *State) AppendMessage(m types.Message) {
	s.Messages = append(s.Messages, m)
}

// Snapshot returns a deep-enough copy for rendering: slices are copied
// so a renderer holding the snapshot is isolated from later turns.
func (s *State) Snapshot() State {
	out := *s
	out.Messages = append([]types.Message(nil), s.Messages...)
	out.BoardMembers = append([]types.BoardMember(nil), s.BoardMembers...)
	if s.Branding != nil {
		branding := *s.Branding
		branding.Colors = append([]types.Color(nil), s.Branding.Colors...)
		out.Branding = &branding
	}
	out.Campaign.ExtractedQuotes = append([]string(nil), s.Campaign.ExtractedQuotes...)
	out.Campaign.GeneratedImages = append([]string(nil), s.Campaign.GeneratedImages...)
	return out
}
