package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gemma/internal/types"
)

type fakeSearcher struct {
	profile *types.PersonProfile
	err     error
}

func (f *fakeSearcher) SearchPeople(ctx context.Context, fullName string) (*types.PersonProfile, error) {
	return f.profile, f.err
}

type fakeImageGen struct {
	dataURI string
	err     error
	calls   []string
}

func (f *fakeImageGen) GenerateImage(ctx context.Context, prompt string) (string, error) {
	f.calls = append(f.calls, prompt)
	return f.dataURI, f.err
}

func newTestSet(people types.PeopleSearcher, images types.ImageGenerator) (*Set, *Registry) {
	set := NewSet(nil, people, images)
	reg := NewRegistry()
	set.RegisterAll(reg)
	return set, reg
}

func TestRegisterAll(t *testing.T) {
	_, reg := newTestSet(nil, nil)
	want := []string{"add_board_member", "generate_branded_letter", "navigate_browser", "navigate_to_step", "set_org_name"}
	got := reg.Names()
	if len(got) != len(want) {
		t.Fatalf("registered %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tool %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSetOrgNameEffect(t *testing.T) {
	set, reg := newTestSet(nil, nil)

	result, err := reg.Execute(context.Background(), "set_org_name", map[string]any{"name": "Wear it Forward"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(result.Result, "Wear it Forward") {
		t.Errorf("confirmation = %q", result.Result)
	}

	effects := set.DrainEffects()
	if effects.OrgName == nil || *effects.OrgName != "Wear it Forward" {
		t.Errorf("OrgName effect = %v", effects.OrgName)
	}

	// Drain resets the accumulator.
	if again := set.DrainEffects(); again.OrgName != nil {
		t.Error("effects not reset after drain")
	}
}

func TestNavigateBrowserEffect(t *testing.T) {
	set, reg := newTestSet(nil, nil)

	result, err := reg.Execute(context.Background(), "navigate_browser", map[string]any{"url": "https://www.sos.state.tx.us/corp/sosda/index.shtml"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Result != "Navigated to https://www.sos.state.tx.us/corp/sosda/index.shtml" {
		t.Errorf("result = %q", result.Result)
	}

	effects := set.DrainEffects()
	if effects.BrowserURL == nil || !strings.Contains(*effects.BrowserURL, "sos.state.tx.us") {
		t.Errorf("BrowserURL effect = %v", effects.BrowserURL)
	}
}

func TestAddBoardMemberEnriched(t *testing.T) {
	searcher := &fakeSearcher{profile: &types.PersonProfile{
		Name:       "Jane Dale",
		PhotoURL:   "https://media.licdn.com/dms/image/abc",
		Headline:   "Community Organizer",
		ProfileURL: "https://www.linkedin.com/in/janedale",
	}}
	set, reg := newTestSet(searcher, nil)

	result, err := reg.Execute(context.Background(), "add_board_member", map[string]any{"name": "Jane Dale", "title": "President"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(result.Result, "profile found") {
		t.Errorf("confirmation = %q", result.Result)
	}

	effects := set.DrainEffects()
	if len(effects.NewBoardMembers) != 1 {
		t.Fatalf("board member effects = %d, want 1", len(effects.NewBoardMembers))
	}
	m := effects.NewBoardMembers[0]
	if m.Title != types.TitlePresident || m.Headline != "Community Organizer" || m.LinkedInURL == "" {
		t.Errorf("member = %+v", m)
	}
}

func TestAddBoardMemberLookupFailureFallsBack(t *testing.T) {
	searcher := &fakeSearcher{err: fmt.Errorf("search backend down")}
	set, reg := newTestSet(searcher, nil)

	result, err := reg.Execute(context.Background(), "add_board_member", map[string]any{"name": "Sam Roy", "title": "Director"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(result.Result, "no public profile") {
		t.Errorf("confirmation = %q", result.Result)
	}

	effects := set.DrainEffects()
	if len(effects.NewBoardMembers) != 1 {
		t.Fatalf("board member effects = %d, want 1", len(effects.NewBoardMembers))
	}
	m := effects.NewBoardMembers[0]
	if m.Name != "Sam Roy" || m.PhotoURL != "" || m.Headline != "" {
		t.Errorf("fallback member = %+v", m)
	}
}

func TestAddBoardMemberRejectsBadTitle(t *testing.T) {
	_, reg := newTestSet(nil, nil)

	_, err := reg.Execute(context.Background(), "add_board_member", map[string]any{"name": "Sam Roy", "title": "CEO"})
	if err == nil {
		t.Fatal("expected an error for invalid title")
	}
}

func TestGenerateBrandedLetter(t *testing.T) {
	gen := &fakeImageGen{dataURI: "data:image/png;base64,aGVsbG8="}
	set, reg := newTestSet(nil, gen)

	args := map[string]any{"orgName": "Tech for Good", "primaryColor": "#FF6B6B", "logoStyle": "Friendly Round"}
	result, err := reg.Execute(context.Background(), "generate_branded_letter", args)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(result.Result, "Tech for Good") {
		t.Errorf("confirmation = %q", result.Result)
	}
	if len(gen.calls) != 1 || !strings.Contains(gen.calls[0], "#FF6B6B") {
		t.Errorf("image prompt = %v", gen.calls)
	}

	effects := set.DrainEffects()
	if len(effects.GeneratedImages) != 1 {
		t.Errorf("generated images = %d, want 1", len(effects.GeneratedImages))
	}
}

func TestGenerateBrandedLetterFailureDoesNotError(t *testing.T) {
	gen := &fakeImageGen{err: fmt.Errorf("quota exceeded")}
	set, reg := newTestSet(nil, gen)

	args := map[string]any{"orgName": "Tech for Good", "primaryColor": "#FF6B6B", "logoStyle": "Friendly Round"}
	result, err := reg.Execute(context.Background(), "generate_branded_letter", args)
	if err != nil {
		t.Fatalf("generation failure must not surface as a tool error: %v", err)
	}
	if !strings.Contains(result.Result, "could not be generated") {
		t.Errorf("result = %q", result.Result)
	}
	if effects := set.DrainEffects(); len(effects.GeneratedImages) != 0 {
		t.Error("failed generation produced an image effect")
	}
}

func TestNavigateToStep(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]any
		wantSection types.Section
		wantStep    types.Step
	}{
		{
			name:        "explicit step",
			args:        map[string]any{"section": "Promote", "step": "GrantSearch"},
			wantSection: types.SectionPromote,
			wantStep:    types.StepGrantSearch,
		},
		{
			name:        "section default",
			args:        map[string]any{"section": "Measure"},
			wantSection: types.SectionMeasure,
			wantStep:    types.StepMeasureDashboard,
		},
		{
			name:        "unknown step falls back to default",
			args:        map[string]any{"section": "Promote", "step": "NoSuchStep"},
			wantSection: types.SectionPromote,
			wantStep:    types.StepBrandIdentity,
		},
		{
			name:        "step outside section falls back to default",
			args:        map[string]any{"section": "Promote", "step": "EIN"},
			wantSection: types.SectionPromote,
			wantStep:    types.StepBrandIdentity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, reg := newTestSet(nil, nil)
			if _, err := reg.Execute(context.Background(), "navigate_to_step", tt.args); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			effects := set.DrainEffects()
			if effects.NavSection == nil || *effects.NavSection != tt.wantSection {
				t.Errorf("NavSection = %v, want %s", effects.NavSection, tt.wantSection)
			}
			if effects.NavStep == nil || *effects.NavStep != tt.wantStep {
				t.Errorf("NavStep = %v, want %d", effects.NavStep, tt.wantStep)
			}
		})
	}
}

func TestNavigateToStepRejectsUnknownSection(t *testing.T) {
	_, reg := newTestSet(nil, nil)
	if _, err := reg.Execute(context.Background(), "navigate_to_step", map[string]any{"section": "Dominate"}); err == nil {
		t.Fatal("expected an error for unknown section")
	}
}
