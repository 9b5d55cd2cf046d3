package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gemma/internal/logging"
	"gemma/internal/types"
)

// Navigator drives the embedded browser pane. Optional: when nil, the
// navigate_browser tool only records the URL for the renderer.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Effects accumulates the state changes a tool batch requested. The
// turn controller drains them once the whole batch has run, so the
// conversation state is patched wholesale rather than mid-batch.
type Effects struct {
	BrowserURL      *string
	OrgName         *string
	NewBoardMembers []types.BoardMember
	GeneratedImages []string
	NavSection      *types.Section
	NavStep         *types.Step
}

// Set wires the Gemma tool handlers to their backing services and
// collects their effects.
type Set struct {
	navigator Navigator
	people    types.PeopleSearcher
	images    types.ImageGenerator

	lookupTimeout time.Duration

	mu      sync.Mutex
	effects Effects
}

// NewSet creates the tool set. Any service may be nil; the owning
// handler then degrades to its fallback behavior.
func NewSet(navigator Navigator, people types.PeopleSearcher, images types.ImageGenerator) *Set {
	return &Set{
		navigator:     navigator,
		people:        people,
		images:        images,
		lookupTimeout: 15 * time.Second,
	}
}

// DrainEffects returns the accumulated effects and resets the
// accumulator for the next batch.
func (s *Set) DrainEffects() Effects {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.effects
	s.effects = Effects{}
	return out
}

// RegisterAll registers every Gemma tool on the registry.
func (s *Set) RegisterAll(reg *Registry) {
	reg.MustRegister(s.navigateBrowserTool())
	reg.MustRegister(s.addBoardMemberTool())
	reg.MustRegister(s.setOrgNameTool())
	reg.MustRegister(s.generateBrandedLetterTool())
	reg.MustRegister(s.navigateToStepTool())
}

func (s *Set) navigateBrowserTool() *Tool {
	return &Tool{
		Name:        "navigate_browser",
		Description: "Navigate the embedded browser pane to a URL so the user can see a government filing page.",
		Category:    CategoryNavigation,
		Schema: ToolSchema{
			Required: []string{"url"},
			Properties: map[string]Property{
				"url": {Type: "string", Description: "The full URL to open"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			url, err := stringArg(args, "url")
			if err != nil {
				return "", err
			}

			if s.navigator != nil {
				if err := s.navigator.Navigate(ctx, url); err != nil {
					// The URL still reaches the renderer; embedded
					// navigation is best-effort.
					logging.ToolsWarn("browser navigation to %s failed: %v", url, err)
				}
			}

			s.mu.Lock()
			s.effects.BrowserURL = &url
			s.mu.Unlock()

			return fmt.Sprintf("Navigated to %s", url), nil
		},
	}
}

func (s *Set) addBoardMemberTool() *Tool {
	return &Tool{
		Name:        "add_board_member",
		Description: "Add a person to the board roster. Their public profile is looked up automatically for the org chart.",
		Category:    CategoryOrganization,
		Schema: ToolSchema{
			Required: []string{"name", "title"},
			Properties: map[string]Property{
				"name":  {Type: "string", Description: "The person's full name"},
				"title": {Type: "string", Description: "Board title", Enum: []any{"President", "Secretary", "Treasurer", "Director"}},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			name, err := stringArg(args, "name")
			if err != nil {
				return "", err
			}
			titleStr, err := stringArg(args, "title")
			if err != nil {
				return "", err
			}
			title, ok := types.ParseBoardTitle(titleStr)
			if !ok {
				return "", fmt.Errorf("%w: title must be President, Secretary, Treasurer, or Director", ErrInvalidArgType)
			}

			member := types.BoardMember{Name: name, Title: title}
			enriched := false
			if s.people != nil {
				lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
				profile, err := s.people.SearchPeople(lookupCtx, name)
				cancel()
				switch {
				case err != nil:
					logging.ToolsWarn("profile lookup for %s failed: %v", name, err)
				case profile != nil:
					member.PhotoURL = profile.PhotoURL
					member.LinkedInURL = profile.ProfileURL
					member.Headline = profile.Headline
					enriched = true
				}
			}

			s.mu.Lock()
			s.effects.NewBoardMembers = append(s.effects.NewBoardMembers, member)
			s.mu.Unlock()

			if enriched {
				return fmt.Sprintf("Added %s as %s to the board (profile found and linked).", name, title), nil
			}
			return fmt.Sprintf("Added %s as %s to the board (no public profile found).", name, title), nil
		},
	}
}

func (s *Set) setOrgNameTool() *Tool {
	return &Tool{
		Name:        "set_org_name",
		Description: "Save the organization's chosen name. Call this as soon as the user decides on a name.",
		Category:    CategoryOrganization,
		Schema: ToolSchema{
			Required: []string{"name"},
			Properties: map[string]Property{
				"name": {Type: "string", Description: "The organization name"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			name, err := stringArg(args, "name")
			if err != nil {
				return "", err
			}

			s.mu.Lock()
			s.effects.OrgName = &name
			s.mu.Unlock()

			return fmt.Sprintf("Organization name set to %q.", name), nil
		},
	}
}

func (s *Set) generateBrandedLetterTool() *Tool {
	return &Tool{
		Name:        "generate_branded_letter",
		Description: "Generate a branded letterhead preview image for the organization.",
		Category:    CategoryBranding,
		Schema: ToolSchema{
			Required: []string{"orgName", "primaryColor", "logoStyle"},
			Properties: map[string]Property{
				"orgName":      {Type: "string", Description: "The organization name"},
				"primaryColor": {Type: "string", Description: "Primary brand color as a hex code"},
				"logoStyle":    {Type: "string", Description: "Logo style, e.g. Friendly Round"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			orgName, err := stringArg(args, "orgName")
			if err != nil {
				return "", err
			}
			primaryColor, err := stringArg(args, "primaryColor")
			if err != nil {
				return "", err
			}
			logoStyle, err := stringArg(args, "logoStyle")
			if err != nil {
				return "", err
			}

			if s.images == nil {
				return "Branded letter generation is not available right now.", nil
			}

			imagePrompt := fmt.Sprintf(
				"Professional nonprofit letterhead for %q. Primary brand color %s. Logo style: %s. Clean, modern layout on white paper with the organization name prominent.",
				orgName, primaryColor, logoStyle,
			)
			dataURI, err := s.images.GenerateImage(ctx, imagePrompt)
			if err != nil {
				logging.ToolsError("branded letter generation for %s failed: %v", orgName, err)
				return "The branded letter could not be generated this time.", nil
			}

			s.mu.Lock()
			s.effects.GeneratedImages = append(s.effects.GeneratedImages, dataURI)
			s.mu.Unlock()

			return fmt.Sprintf("Generated a branded letterhead preview for %s.", orgName), nil
		},
	}
}

func (s *Set) navigateToStepTool() *Tool {
	return &Tool{
		Name:        "navigate_to_step",
		Description: "Move the user to a different section and step of the workspace when their intent requires it.",
		Category:    CategoryNavigation,
		Schema: ToolSchema{
			Required: []string{"section"},
			Properties: map[string]Property{
				"section": {Type: "string", Description: "Target section", Enum: []any{"Incorporate", "Promote", "Manage", "Measure"}},
				"step":    {Type: "string", Description: "Target step name within the section, e.g. BrandIdentity"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			sectionStr, err := stringArg(args, "section")
			if err != nil {
				return "", err
			}
			section, ok := types.ParseSection(sectionStr)
			if !ok {
				return "", fmt.Errorf("%w: unknown section %q", ErrInvalidArgType, sectionStr)
			}

			step := types.DefaultStepForSection(section)
			if raw, present := args["step"]; present {
				if name, isStr := raw.(string); isStr && name != "" {
					if parsed, known := types.ParseStepName(name); known {
						if sec, inBand := types.SectionForStep(parsed); inBand && sec == section {
							step = parsed
						} else {
							logging.ToolsWarn("step %s is outside section %s, using default", name, section)
						}
					} else {
						logging.ToolsWarn("unknown step name %q, using section default", name)
					}
				}
			}

			s.mu.Lock()
			s.effects.NavSection = &section
			s.effects.NavStep = &step
			s.mu.Unlock()

			return fmt.Sprintf("Moved the user to the %s section.", section), nil
		},
	}
}

// stringArg extracts a non-empty string argument.
func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredArg, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidArgType, key)
	}
	if s == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrMissingRequiredArg, key)
	}
	return s, nil
}
