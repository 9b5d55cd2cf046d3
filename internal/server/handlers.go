package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"gemma/internal/chat"
	"gemma/internal/logging"
	"gemma/internal/prompt"
	"gemma/internal/tools"
	"gemma/internal/types"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.APIError("encode response: %v", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type turnResponse struct {
	Message types.Message `json:"message"`
	State   chat.State    `json:"state"`
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.conv.State())
}

type messageRequest struct {
	Text        string `json:"text"`
	InlineImage string `json:"inlineImage,omitempty"`
	ImageMIME   string `json:"imageMime,omitempty"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	msg, err := s.conv.SendMessage(r.Context(), types.ChatPrompt{
		Text:        req.Text,
		InlineImage: req.InlineImage,
		ImageMIME:   req.ImageMIME,
	})
	if errors.Is(err, chat.ErrBusy) {
		writeError(w, http.StatusConflict, "a turn is already in progress")
		return
	}
	if err != nil {
		logging.APIError("send message: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, turnResponse{Message: msg, State: s.conv.State()})
}

type stepEntry struct {
	Step        types.Step `json:"step"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url,omitempty"`
}

// handleGetSteps serves the static wizard catalog: every step with its
// title, description and filing URL, plus the preset brand palettes.
func (s *Server) handleGetSteps(w http.ResponseWriter, r *http.Request) {
	steps := make([]stepEntry, 0, len(prompt.StepsInfo))
	for step, info := range prompt.StepsInfo {
		steps = append(steps, stepEntry{
			Step:        step,
			Title:       info.Title,
			Description: info.Description,
			URL:         info.URL,
		})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Step < steps[j].Step })

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"steps":    steps,
		"palettes": prompt.PresetPalettes,
	})
}

type toolEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// handleGetTools lists the model-callable tools grouped by category,
// for the frontend's capability panel.
func (s *Server) handleGetTools(w http.ResponseWriter, r *http.Request) {
	out := make(map[string][]toolEntry)
	if s.reg != nil {
		categories := []tools.ToolCategory{
			tools.CategoryNavigation,
			tools.CategoryOrganization,
			tools.CategoryBranding,
			tools.CategoryGeneral,
		}
		for _, cat := range categories {
			registered := s.reg.GetByCategory(cat)
			if len(registered) == 0 {
				continue
			}
			entries := make([]toolEntry, 0, len(registered))
			for _, t := range registered {
				entries = append(entries, toolEntry{Name: t.Name, Description: t.Description})
			}
			out[string(cat)] = entries
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChangeSection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Section string `json:"section"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	section, ok := types.ParseSection(req.Section)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown section")
		return
	}
	writeJSON(w, http.StatusOK, s.conv.ChangeSection(r.Context(), section))
}

func (s *Server) handleSelectStep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Step int `json:"step"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !types.ValidStep(req.Step) {
		writeError(w, http.StatusBadRequest, "unknown step")
		return
	}
	writeJSON(w, http.StatusOK, s.conv.SelectStep(r.Context(), types.Step(req.Step)))
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if s.speech == nil || !s.speech.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "speech is not configured")
		return
	}

	var req struct {
		Text    string `json:"text"`
		VoiceID string `json:"voiceId,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := s.speech.Convert(r.Context(), req.Text, req.VoiceID)
	if err != nil {
		logging.APIError("speech conversion: %v", err)
		writeError(w, http.StatusBadGateway, "speech conversion failed")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		logging.APIError("write audio: %v", err)
	}
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	if s.browser == nil || !s.browser.IsConnected() {
		writeError(w, http.StatusServiceUnavailable, "browser is not running")
		return
	}

	png, err := s.browser.Screenshot(r.Context())
	if err != nil {
		logging.APIError("screenshot: %v", err)
		writeError(w, http.StatusBadGateway, "screenshot failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		logging.APIError("write screenshot: %v", err)
	}
}

func (s *Server) handleCampaignAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileName string `json:"fileName"`
		Data     string `json:"data"` // base64, no data-URI prefix
		MIMEType string `json:"mimeType"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.FileName == "" || req.Data == "" {
		writeError(w, http.StatusBadRequest, "fileName and data are required")
		return
	}

	state, err := s.conv.AnalyzeCampaignDocument(r.Context(), req.FileName, req.Data, req.MIMEType)
	if errors.Is(err, chat.ErrBusy) {
		writeError(w, http.StatusConflict, "a turn is already in progress")
		return
	}
	if err != nil {
		logging.APIError("campaign analyze: %v", err)
		writeError(w, http.StatusBadGateway, "document analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleCampaignGenerate(w http.ResponseWriter, r *http.Request) {
	state, err := s.conv.GenerateCampaignImages(r.Context())
	if errors.Is(err, chat.ErrBusy) {
		writeError(w, http.StatusConflict, "a turn is already in progress")
		return
	}
	if err != nil {
		logging.APIError("campaign generate: %v", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}
