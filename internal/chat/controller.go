package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"gemma/internal/logging"
	"gemma/internal/perception"
	"gemma/internal/prompt"
	"gemma/internal/store"
	"gemma/internal/tools"
	"gemma/internal/types"
)

// ErrorMessage is the fixed apology shown for any turn-level failure.
// Internal error detail is logged, never surfaced in the transcript.
const ErrorMessage = "Sorry, I encountered an error. Please try again."

// ErrBusy is returned when a turn is already in progress. Input is
// disallowed while loading; in-flight calls are never aborted.
var ErrBusy = errors.New("a turn is already in progress")

// Phase is the turn controller's position in the turn state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseAwaitingModel
	PhaseAwaitingTools
	PhaseReconciling
)

// maxToolRounds bounds the model's tool-call follow-up loop so a
// misbehaving model cannot spin the turn forever.
const maxToolRounds = 4

// Persister is the subset of the store the controller writes through.
// A nil Persister disables persistence.
type Persister interface {
	AppendMessage(ctx context.Context, orgID string, m types.Message, section types.Section, step types.Step) error
	RenameOrganization(ctx context.Context, id, name, initials string) error
	AppendBoardMember(ctx context.Context, orgID string, m types.BoardMember) error
	SaveBranding(ctx context.Context, orgID string, b types.BrandingData) error
	SaveProgress(ctx context.Context, orgID string, p store.Progress) error
	SaveCampaign(ctx context.Context, orgID string, c types.CampaignData) error
}

// Controller orchestrates one user turn end to end: append user
// message, invoke the model, dispatch tool calls, parse the final text,
// patch the state, append the assistant message. It exclusively owns
// the chat session; concurrent turns are rejected by the phase gate.
type Controller struct {
	mu      sync.Mutex
	state   *State
	phase   Phase
	session types.ChatSession
	toolSet *tools.Set
	reg     *tools.Registry
	images  types.ImageGenerator
	db      Persister
}

// NewController wires a controller for one organization's conversation.
// images and db may be nil.
func NewController(orgID string, session types.ChatSession, toolSet *tools.Set, reg *tools.Registry, images types.ImageGenerator, db Persister) *Controller {
	return &Controller{
		state:   NewState(orgID),
		session: session,
		toolSet: toolSet,
		reg:     reg,
		images:  images,
		db:      db,
	}
}

// Initialize prepares the session and seeds the transcript with the
// greeting. A restored transcript keeps its history; the greeting is
// only seeded into an empty one.
func (c *Controller) Initialize(ctx context.Context) error {
	if err := c.session.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize session: %w", err)
	}

	c.mu.Lock()
	if len(c.state.Messages) > 0 {
		c.mu.Unlock()
		return nil
	}
	greeting := types.NewMessage(uuid.NewString(), types.RoleModel, prompt.InitialGreeting)
	c.state.AppendMessage(greeting)
	c.mu.Unlock()

	c.persistMessage(ctx, greeting)
	return nil
}

// Loader reads previously persisted conversation state. A nil result
// with nil error means nothing was stored.
type Loader interface {
	GetOrganization(ctx context.Context, id string) (*types.Organization, error)
	ListMessages(ctx context.Context, orgID string) ([]types.Message, error)
	ListBoardMembers(ctx context.Context, orgID string) ([]types.BoardMember, error)
	GetBranding(ctx context.Context, orgID string) (*types.BrandingData, error)
	GetProgress(ctx context.Context, orgID string) (*store.Progress, error)
	GetCampaign(ctx context.Context, orgID string) (*types.CampaignData, error)
}

// Restore rebuilds the in-memory state from the store so a restarted
// server resumes where the user left off. Call before Initialize.
func (c *Controller) Restore(ctx context.Context, ld Loader) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	orgID := c.state.Organization.ID

	org, err := ld.GetOrganization(ctx, orgID)
	if err != nil {
		return fmt.Errorf("restore organization: %w", err)
	}
	if org == nil {
		return nil
	}
	c.state.Organization = *org

	messages, err := ld.ListMessages(ctx, orgID)
	if err != nil {
		return fmt.Errorf("restore messages: %w", err)
	}
	c.state.Messages = messages

	members, err := ld.ListBoardMembers(ctx, orgID)
	if err != nil {
		return fmt.Errorf("restore board members: %w", err)
	}
	c.state.BoardMembers = members

	branding, err := ld.GetBranding(ctx, orgID)
	if err != nil {
		return fmt.Errorf("restore branding: %w", err)
	}
	c.state.Branding = branding

	progress, err := ld.GetProgress(ctx, orgID)
	if err != nil {
		return fmt.Errorf("restore progress: %w", err)
	}
	if progress != nil {
		c.state.CurrentSection = progress.Section
		c.state.CurrentStep = progress.Step
		c.state.Provision = progress.Provision
		c.state.BrowserURL = progress.BrowserURL
	}

	campaign, err := ld.GetCampaign(ctx, orgID)
	if err != nil {
		return fmt.Errorf("restore campaign: %w", err)
	}
	if campaign != nil {
		c.state.Campaign = *campaign
	}

	logging.Session("restored conversation for %s: %d messages at %s/%d",
		orgID, len(messages), c.state.CurrentSection, c.state.CurrentStep)
	return nil
}

// State returns a snapshot safe for rendering.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

// IsLoading reports whether a turn is in flight.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase != PhaseIdle
}

// SendMessage runs one user turn. The returned message is the
// assistant reply appended to the transcript; on internal failure it is
// the fixed apology and the error is logged, not returned.
func (c *Controller) SendMessage(ctx context.Context, userPrompt types.ChatPrompt) (types.Message, error) {
	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return types.Message{}, ErrBusy
	}
	c.phase = PhaseSubmitting

	userMsg := types.NewMessage(uuid.NewString(), types.RoleUser, userPrompt.Text)
	c.state.AppendMessage(userMsg)
	orgName := c.state.Organization.Name
	c.mu.Unlock()

	c.persistMessage(ctx, userMsg)

	// The org name rides along on every message so the model can
	// detect the TBD placeholder.
	userPrompt.Text = fmt.Sprintf("[ORG_NAME: %s] %s", orgName, userPrompt.Text)

	reply := c.runModelLoop(ctx, userPrompt)

	c.setPhase(PhaseReconciling)
	assistantMsg := c.reconcile(ctx, reply)

	c.setPhase(PhaseIdle)
	return assistantMsg, nil
}

// runModelLoop performs the model round-trips for one turn: the initial
// call plus one follow-up per tool batch. A nil return means the turn
// failed and the apology path takes over.
func (c *Controller) runModelLoop(ctx context.Context, userPrompt types.ChatPrompt) *types.LLMToolResponse {
	c.setPhase(PhaseAwaitingModel)
	resp, err := c.session.SendMessage(ctx, userPrompt)
	if err != nil {
		logging.ChatError("model call failed: %v", err)
		return nil
	}

	for round := 0; len(resp.ToolCalls) > 0; round++ {
		if round >= maxToolRounds {
			logging.ChatError("model exceeded %d tool rounds, stopping", maxToolRounds)
			break
		}

		c.setPhase(PhaseAwaitingTools)
		logging.Chat("dispatching %d tool calls (round %d)", len(resp.ToolCalls), round+1)
		results := tools.RunBatch(ctx, c.reg, resp.ToolCalls)

		c.setPhase(PhaseAwaitingModel)
		resp, err = c.session.SendToolResults(ctx, results)
		if err != nil {
			logging.ChatError("tool result follow-up failed: %v", err)
			return nil
		}
	}
	return resp
}

// reconcile drains tool effects, parses the final text, patches the
// state, and appends the assistant message. On a failed turn it appends
// the fixed apology instead.
func (c *Controller) reconcile(ctx context.Context, reply *types.LLMToolResponse) types.Message {
	c.mu.Lock()

	// Tool effects land first, even when the model follow-up failed:
	// the tools already ran inside this turn, so their state changes
	// belong to it and must not sit in the accumulator for the next
	// one. Applying before the parse also lets the parser see the
	// post-navigation step (a navigate_to_step to Incorporation
	// enables the provision rule for this same reply).
	effects := c.toolSet.DrainEffects()
	c.state.Apply(Patch{
		Step:            effects.NavStep,
		Section:         effects.NavSection,
		OrgName:         effects.OrgName,
		BrowserURL:      effects.BrowserURL,
		NewBoardMembers: effects.NewBoardMembers,
		GeneratedImages: effects.GeneratedImages,
	})

	var parse perception.ReplyParse
	text := ErrorMessage
	if reply != nil {
		parse = perception.ParseReply(reply.Text, c.state.CurrentStep)
		c.state.Apply(Patch{
			Step:      parse.Step,
			Palette:   parse.Palette,
			OrgName:   parse.OrgName,
			Provision: parse.Provision,
		})
		text = parse.CleanText
		if text == "" {
			text = "Done!"
		}
	}

	msg := types.NewMessage(uuid.NewString(), types.RoleModel, text)
	c.state.AppendMessage(msg)

	snapshot := c.state.Snapshot()
	c.mu.Unlock()

	c.persistTurn(ctx, msg, effects, parse, snapshot)
	return msg
}

// ChangeSection handles the user switching workspace sections directly.
func (c *Controller) ChangeSection(ctx context.Context, section types.Section) State {
	c.mu.Lock()
	c.state.Apply(Patch{Section: &section})
	snapshot := c.state.Snapshot()
	c.mu.Unlock()

	c.persistProgress(ctx, snapshot)
	return snapshot
}

// SelectStep handles the user picking a wizard step directly. Invalid
// steps are ignored.
func (c *Controller) SelectStep(ctx context.Context, step types.Step) State {
	c.mu.Lock()
	if _, ok := types.SectionForStep(step); ok {
		c.state.Apply(Patch{Step: &step})
	} else {
		logging.ChatDebug("ignoring selection of unknown step %d", step)
	}
	snapshot := c.state.Snapshot()
	c.mu.Unlock()

	c.persistProgress(ctx, snapshot)
	return snapshot
}

var quotesBlockRe = regexp.MustCompile("(?s)```json\\s*(\\[.*?\\])\\s*```")

// AnalyzeCampaignDocument runs the campaign-studio analysis turn: the
// uploaded document goes to the model, which returns shareable quotes.
func (c *Controller) AnalyzeCampaignDocument(ctx context.Context, fileName, base64Data, mimeType string) (State, error) {
	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return State{}, ErrBusy
	}
	c.phase = PhaseSubmitting
	c.state.Campaign.UploadedFileName = fileName
	c.state.Campaign.IsAnalyzing = true
	c.mu.Unlock()

	analysisPrompt := types.ChatPrompt{
		Text:        "Analyze this document and extract 3 short, inspiring quotes suitable for social media campaign graphics. Reply with ONLY a ```json fenced block containing a JSON array of quote strings.",
		InlineImage: base64Data,
		ImageMIME:   mimeType,
	}

	c.setPhase(PhaseAwaitingModel)
	resp, err := c.session.SendMessage(ctx, analysisPrompt)

	c.mu.Lock()
	c.state.Campaign.IsAnalyzing = false
	if err != nil {
		c.mu.Unlock()
		c.setPhase(PhaseIdle)
		logging.CampaignError("document analysis failed: %v", err)
		return c.State(), fmt.Errorf("document analysis failed: %w", err)
	}

	quotes := extractQuotes(resp.Text)
	if len(quotes) > 0 {
		c.state.Campaign.ExtractedQuotes = quotes
	}
	snapshot := c.state.Snapshot()
	c.mu.Unlock()
	c.setPhase(PhaseIdle)

	c.persistCampaign(ctx, snapshot)
	logging.Campaign("extracted %d quotes from %s", len(quotes), fileName)
	return snapshot, nil
}

// GenerateCampaignImages renders one branded graphic per extracted
// quote. Failed generations are skipped, not fatal.
func (c *Controller) GenerateCampaignImages(ctx context.Context) (State, error) {
	if c.images == nil {
		return c.State(), fmt.Errorf("image generation is not available")
	}

	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return State{}, ErrBusy
	}
	c.phase = PhaseSubmitting
	quotes := append([]string(nil), c.state.Campaign.ExtractedQuotes...)
	orgName := c.state.Organization.Name
	primaryColor := "#FF6B6B"
	if c.state.Branding != nil && len(c.state.Branding.Colors) > 0 {
		primaryColor = c.state.Branding.Colors[0].Hex
	}
	c.state.Campaign.IsGenerating = true
	c.mu.Unlock()

	if len(quotes) == 0 {
		c.mu.Lock()
		c.state.Campaign.IsGenerating = false
		c.mu.Unlock()
		c.setPhase(PhaseIdle)
		return c.State(), fmt.Errorf("no quotes to illustrate; analyze a document first")
	}

	var images []string
	for _, quote := range quotes {
		imagePrompt := fmt.Sprintf(
			"Social media campaign graphic for the nonprofit %q. Feature the quote %q in elegant typography over a background in %s. Uplifting, shareable, Instagram square format.",
			orgName, quote, primaryColor,
		)
		dataURI, err := c.images.GenerateImage(ctx, imagePrompt)
		if err != nil {
			logging.CampaignError("image generation for quote failed: %v", err)
			continue
		}
		images = append(images, dataURI)
	}

	c.mu.Lock()
	c.state.Campaign.IsGenerating = false
	c.state.Apply(Patch{GeneratedImages: images})
	snapshot := c.state.Snapshot()
	c.mu.Unlock()
	c.setPhase(PhaseIdle)

	c.persistCampaign(ctx, snapshot)
	logging.Campaign("generated %d of %d campaign images", len(images), len(quotes))
	return snapshot, nil
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// extractQuotes pulls a JSON string array out of a fenced block.
func extractQuotes(text string) []string {
	m := quotesBlockRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var quotes []string
	if err := json.Unmarshal([]byte(m[1]), &quotes); err != nil {
		logging.CampaignError("quote block is not a JSON string array: %v", err)
		return nil
	}
	return quotes
}

// Persistence below is best-effort: a storage failure is logged and the
// turn still completes against the in-memory state.

func (c *Controller) persistMessage(ctx context.Context, m types.Message) {
	if c.db == nil {
		return
	}
	c.mu.Lock()
	orgID := c.state.Organization.ID
	section := c.state.CurrentSection
	step := c.state.CurrentStep
	c.mu.Unlock()
	if err := c.db.AppendMessage(ctx, orgID, m, section, step); err != nil {
		logging.StoreError("persist message %s: %v", m.ID, err)
	}
}

func (c *Controller) persistTurn(ctx context.Context, msg types.Message, effects tools.Effects, parse perception.ReplyParse, snapshot State) {
	if c.db == nil {
		return
	}
	orgID := snapshot.Organization.ID

	if err := c.db.AppendMessage(ctx, orgID, msg, snapshot.CurrentSection, snapshot.CurrentStep); err != nil {
		logging.StoreError("persist message %s: %v", msg.ID, err)
	}
	if effects.OrgName != nil || parse.OrgName != nil {
		if err := c.db.RenameOrganization(ctx, orgID, snapshot.Organization.Name, snapshot.Organization.Initials); err != nil {
			logging.StoreError("persist org rename: %v", err)
		}
	}
	for _, member := range effects.NewBoardMembers {
		if err := c.db.AppendBoardMember(ctx, orgID, member); err != nil {
			logging.StoreError("persist board member %s: %v", member.Name, err)
		}
	}
	if parse.Palette != nil {
		if err := c.db.SaveBranding(ctx, orgID, *snapshot.Branding); err != nil {
			logging.StoreError("persist branding: %v", err)
		}
	}
	if len(effects.GeneratedImages) > 0 {
		if err := c.db.SaveCampaign(ctx, orgID, snapshot.Campaign); err != nil {
			logging.StoreError("persist campaign: %v", err)
		}
	}
	c.persistProgress(ctx, snapshot)
}

func (c *Controller) persistProgress(ctx context.Context, snapshot State) {
	if c.db == nil {
		return
	}
	p := store.Progress{
		Section:    snapshot.CurrentSection,
		Step:       snapshot.CurrentStep,
		Provision:  snapshot.Provision,
		BrowserURL: snapshot.BrowserURL,
	}
	if err := c.db.SaveProgress(ctx, snapshot.Organization.ID, p); err != nil {
		logging.StoreError("persist progress: %v", err)
	}
}

func (c *Controller) persistCampaign(ctx context.Context, snapshot State) {
	if c.db == nil {
		return
	}
	if err := c.db.SaveCampaign(ctx, snapshot.Organization.ID, snapshot.Campaign); err != nil {
		logging.StoreError("persist campaign: %v", err)
	}
}
