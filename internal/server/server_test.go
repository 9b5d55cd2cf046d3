package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"

	"gemma/internal/chat"
	"gemma/internal/config"
	"gemma/internal/tools"
	"gemma/internal/types"
)

// fakeConversation serves canned state and records calls.
type fakeConversation struct {
	state    chat.State
	busy     bool
	sent     []types.ChatPrompt
	sections []types.Section
	steps    []types.Step
}

func (f *fakeConversation) State() chat.State { return f.state }

func (f *fakeConversation) SendMessage(ctx context.Context, p types.ChatPrompt) (types.Message, error) {
	if f.busy {
		return types.Message{}, chat.ErrBusy
	}
	f.sent = append(f.sent, p)
	reply := types.NewMessage("m_reply", types.RoleModel, "Let's get started!")
	f.state.Messages = append(f.state.Messages, reply)
	return reply, nil
}

func (f *fakeConversation) ChangeSection(ctx context.Context, s types.Section) chat.State {
	f.sections = append(f.sections, s)
	f.state.CurrentSection = s
	f.state.CurrentStep = types.DefaultStepForSection(s)
	return f.state
}

func (f *fakeConversation) SelectStep(ctx context.Context, s types.Step) chat.State {
	f.steps = append(f.steps, s)
	f.state.CurrentStep = s
	return f.state
}

func (f *fakeConversation) AnalyzeCampaignDocument(ctx context.Context, fileName, data, mime string) (chat.State, error) {
	if f.busy {
		return chat.State{}, chat.ErrBusy
	}
	f.state.Campaign.UploadedFileName = fileName
	f.state.Campaign.ExtractedQuotes = []string{"We served 12,000 meals."}
	return f.state, nil
}

func (f *fakeConversation) GenerateCampaignImages(ctx context.Context) (chat.State, error) {
	if len(f.state.Campaign.ExtractedQuotes) == 0 {
		return chat.State{}, errors.New("no quotes to illustrate; analyze a document first")
	}
	f.state.Campaign.GeneratedImages = []string{"data:image/png;base64,aW1n"}
	return f.state, nil
}

type fakeSynth struct {
	enabled bool
	audio   []byte
}

func (f *fakeSynth) Enabled() bool { return f.enabled }

func (f *fakeSynth) Convert(ctx context.Context, text, voiceID string) ([]byte, error) {
	if text == "fail" {
		return nil, errors.New("upstream rejected request")
	}
	return f.audio, nil
}

func newTestServer(conv *fakeConversation, synth Synthesizer) *Server {
	cfg := config.DefaultConfig()
	if conv.state.Organization.ID == "" {
		conv.state = *chat.NewState("org_1")
	}
	reg := tools.NewRegistry()
	tools.NewSet(nil, nil, nil).RegisterAll(reg)
	return New(cfg, conv, synth, nil, reg)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetState(t *testing.T) {
	srv := newTestServer(&fakeConversation{}, nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var state chat.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, types.SectionIncorporate, state.CurrentSection)
	require.Equal(t, "TBD", state.Organization.Name)
}

func TestSendMessage(t *testing.T) {
	conv := &fakeConversation{}
	srv := newTestServer(conv, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/message", map[string]string{"text": "Our mission is literacy."})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp turnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, types.RoleModel, resp.Message.Role)
	require.Len(t, conv.sent, 1)
	require.Equal(t, "Our mission is literacy.", conv.sent[0].Text)
}

func TestSendMessageValidation(t *testing.T) {
	srv := newTestServer(&fakeConversation{}, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/message", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/message", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessageBusy(t *testing.T) {
	srv := newTestServer(&fakeConversation{busy: true}, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/message", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "already in progress")
}

func TestGetSteps(t *testing.T) {
	srv := newTestServer(&fakeConversation{}, nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/steps", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Steps    []stepEntry                   `json:"steps"`
		Palettes map[string]types.BrandingData `json:"palettes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Steps, 24)
	require.Equal(t, types.StepOnboarding, resp.Steps[0].Step)
	for i := 1; i < len(resp.Steps); i++ {
		require.Less(t, resp.Steps[i-1].Step, resp.Steps[i].Step)
	}
	require.Equal(t, "Lone Star Pride", resp.Palettes["TEXAS"].PaletteName)
}

func TestGetTools(t *testing.T) {
	srv := newTestServer(&fakeConversation{}, nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/tools", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]toolEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	nav := resp[string(tools.CategoryNavigation)]
	require.Len(t, nav, 2)
	require.Equal(t, "navigate_browser", nav[0].Name)
	require.Equal(t, "navigate_to_step", nav[1].Name)

	org := resp[string(tools.CategoryOrganization)]
	require.Len(t, org, 2)
	require.Equal(t, "add_board_member", org[0].Name)

	require.Len(t, resp[string(tools.CategoryBranding)], 1)
	require.NotContains(t, resp, string(tools.CategoryGeneral))
}

func TestGetToolsWithoutRegistry(t *testing.T) {
	conv := &fakeConversation{state: *chat.NewState("org_1")}
	srv := New(config.DefaultConfig(), conv, nil, nil, nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/tools", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "{}\n", rec.Body.String())
}

func TestChangeSection(t *testing.T) {
	conv := &fakeConversation{}
	srv := newTestServer(conv, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/section", map[string]string{"section": "Promote"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []types.Section{types.SectionPromote}, conv.sections)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/section", map[string]string{"section": "Nonsense"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectStep(t *testing.T) {
	conv := &fakeConversation{}
	srv := newTestServer(conv, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/step", map[string]int{"step": int(types.StepEIN)})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []types.Step{types.StepEIN}, conv.steps)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/step", map[string]int{"step": 42})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, conv.steps, 1)
}

func TestSpeech(t *testing.T) {
	srv := newTestServer(&fakeConversation{}, &fakeSynth{enabled: true, audio: []byte("ID3mp3data")})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/speech", map[string]string{"text": "Hi! I'm Gemma."})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	require.Equal(t, "ID3mp3data", rec.Body.String())
}

func TestSpeechUnavailable(t *testing.T) {
	srv := newTestServer(&fakeConversation{}, &fakeSynth{enabled: false})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/speech", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv = newTestServer(&fakeConversation{}, nil)
	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/speech", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestScreenshotUnavailable(t *testing.T) {
	srv := newTestServer(&fakeConversation{}, nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/browser/screenshot", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCampaignEndpoints(t *testing.T) {
	conv := &fakeConversation{}
	srv := newTestServer(conv, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/campaign/analyze", map[string]string{
		"fileName": "report.pdf",
		"data":     "aGVsbG8=",
		"mimeType": "application/pdf",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var state chat.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, "report.pdf", state.Campaign.UploadedFileName)
	require.Len(t, state.Campaign.ExtractedQuotes, 1)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/campaign/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Len(t, state.Campaign.GeneratedImages, 1)
}

func TestCampaignAnalyzeValidation(t *testing.T) {
	srv := newTestServer(&fakeConversation{}, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/campaign/analyze", map[string]string{"fileName": "report.pdf"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCampaignGenerateWithoutQuotes(t *testing.T) {
	srv := newTestServer(&fakeConversation{}, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/campaign/generate", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "analyze a document first")
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(&fakeConversation{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSUnknownOrigin(t *testing.T) {
	srv := newTestServer(&fakeConversation{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebSocketChat(t *testing.T) {
	conv := &fakeConversation{}
	srv := newTestServer(conv, nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	ws, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer ws.Close(websocket.StatusNormalClosure, "done")

	// The server pushes the current state on connect.
	var frame wsOutbound
	_, data, err := ws.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &frame))
	require.Equal(t, "state", frame.Type)
	require.Equal(t, "TBD", frame.State.Organization.Name)

	out, err := json.Marshal(wsInbound{Type: "message", Text: "We feed the homeless."})
	require.NoError(t, err)
	require.NoError(t, ws.Write(ctx, websocket.MessageText, out))

	_, data, err = ws.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &frame))
	require.Equal(t, "turn", frame.Type)
	require.Equal(t, types.RoleModel, frame.Message.Role)
	require.Len(t, conv.sent, 1)

	out, err = json.Marshal(wsInbound{Type: "bogus"})
	require.NoError(t, err)
	require.NoError(t, ws.Write(ctx, websocket.MessageText, out))

	_, data, err = ws.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &frame))
	require.Equal(t, "error", frame.Type)
}
