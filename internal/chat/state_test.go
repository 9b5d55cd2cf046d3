package chat

import (
	"testing"

	"gemma/internal/types"
)

func TestNewState(t *testing.T) {
	s := NewState("org_1")
	if s.CurrentSection != types.SectionIncorporate || s.CurrentStep != types.StepOnboarding {
		t.Errorf("fresh state at %s/%d", s.CurrentSection, s.CurrentStep)
	}
	if s.Organization.Name != "TBD" {
		t.Errorf("fresh org name = %q", s.Organization.Name)
	}
}

func TestApplyStepKeepsSectionInBand(t *testing.T) {
	s := NewState("org_1")

	step := types.StepGrantSearch
	s.Apply(Patch{Step: &step})
	if s.CurrentSection != types.SectionPromote {
		t.Errorf("section = %s, want Promote", s.CurrentSection)
	}

	step = types.StepIncorporation
	s.Apply(Patch{Step: &step})
	if s.CurrentSection != types.SectionIncorporate {
		t.Errorf("section = %s, want Incorporate", s.CurrentSection)
	}
}

func TestApplySectionLandsOnDefaultStep(t *testing.T) {
	s := NewState("org_1")

	section := types.SectionManage
	s.Apply(Patch{Section: &section})
	if s.CurrentStep != types.StepFederalFiling {
		t.Errorf("step = %d, want FederalFiling", s.CurrentStep)
	}

	section = types.SectionIncorporate
	s.Apply(Patch{Section: &section})
	if s.CurrentStep != types.StepMissionName {
		t.Errorf("step = %d, want MissionName", s.CurrentStep)
	}
}

func TestApplyPaletteReplacesWholesale(t *testing.T) {
	s := NewState("org_1")

	first := types.BrandingData{
		PaletteName: "Empathy & Care",
		Mood:        "Warm",
		Colors: []types.Color{
			{Role: "Primary", Hex: "#FF6B6B", Name: "Coral Heart"},
			{Role: "Secondary", Hex: "#2D3436", Name: "Solid Navy"},
		},
	}
	s.Apply(Patch{Palette: &first})

	second := types.BrandingData{
		PaletteName: "Bold Future",
		Mood:        "Loud",
		Colors: []types.Color{
			{Role: "Primary", Hex: "#8E44AD", Name: "Vision Purple"},
		},
	}
	s.Apply(Patch{Palette: &second})

	if s.Branding.PaletteName != "Bold Future" {
		t.Errorf("palette = %q", s.Branding.PaletteName)
	}
	if len(s.Branding.Colors) != 1 {
		t.Errorf("colors = %d, want 1 (no merging)", len(s.Branding.Colors))
	}
	if s.Branding.Mood != "Loud" {
		t.Errorf("mood = %q", s.Branding.Mood)
	}
}

func TestApplyBoardMembersAppendOnly(t *testing.T) {
	s := NewState("org_1")

	s.Apply(Patch{NewBoardMembers: []types.BoardMember{{Name: "Jane Dale", Title: types.TitlePresident}}})
	s.Apply(Patch{NewBoardMembers: []types.BoardMember{{Name: "Sam Roy", Title: types.TitleSecretary}}})

	if len(s.BoardMembers) != 2 {
		t.Fatalf("board size = %d, want 2", len(s.BoardMembers))
	}
	if s.BoardMembers[0].Name != "Jane Dale" || s.BoardMembers[1].Name != "Sam Roy" {
		t.Errorf("board order = %v", s.BoardMembers)
	}
}

func TestApplyOrgNameRecomputesInitials(t *testing.T) {
	s := NewState("org_1")
	name := "Wear it Forward"
	s.Apply(Patch{OrgName: &name})
	if s.Organization.Name != "Wear it Forward" || s.Organization.Initials != "WF" {
		t.Errorf("org = %+v", s.Organization)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewState("org_1")
	s.AppendMessage(types.NewMessage("m1", types.RoleModel, "hi"))
	snap := s.Snapshot()

	s.AppendMessage(types.NewMessage("m2", types.RoleUser, "hello"))
	name := "Austin Housing"
	s.Apply(Patch{OrgName: &name})

	if len(snap.Messages) != 1 {
		t.Errorf("snapshot messages = %d, want 1", len(snap.Messages))
	}
	if snap.Organization.Name != "TBD" {
		t.Errorf("snapshot org = %q, want TBD", snap.Organization.Name)
	}
}
