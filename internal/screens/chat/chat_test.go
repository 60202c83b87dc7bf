package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/dsatutor/internal/router"
	"github.com/abhisek/dsatutor/internal/tutor"
)

// mockService implements conversation.Service, replaying canned
// results in order.
type mockService struct {
	ingests []tutor.IngestRequest
	results []*tutor.Result
	err     error
}

func (m *mockService) Ingest(_ context.Context, req tutor.IngestRequest) (*tutor.Result, error) {
	m.ingests = append(m.ingests, req)
	return m.pop()
}

func (m *mockService) NextStep(_ context.Context, _ string) (*tutor.Result, error) {
	return m.pop()
}

func (m *mockService) ResetSession(_ context.Context, _ string) (json.RawMessage, error) {
	if m.err != nil {
		return nil, m.err
	}
	return json.RawMessage(`{"ok":true}`), nil
}

func (m *mockService) pop() (*tutor.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.results) == 0 {
		return &tutor.Result{Action: tutor.TagAnswerContent, UI: &tutor.UIPayload{}}, nil
	}
	res := m.results[0]
	m.results = m.results[1:]
	return res, nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrlKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

// drain executes a command tree synchronously and applies exchange
// completions to the screen. Other messages (cursor blinks and the
// like) are dropped.
func drain(t *testing.T, s *ChatScreen, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			drain(t, s, c)
		}
		return
	}
	if done, ok := msg.(exchangeDoneMsg); ok {
		_, _ = s.Update(done)
	}
}

func diagnosticOffer() *tutor.Result {
	return &tutor.Result{
		Action:     tutor.TagOfferDiagnostic,
		Confidence: "medium",
		UI: &tutor.UIPayload{
			Rationale: "fresh session",
			Options:   []string{"Yes", "No"},
		},
	}
}

func startedScreen(t *testing.T, svc *mockService) *ChatScreen {
	t.Helper()
	s := New(svc, nil)
	drain(t, s, s.Init())
	if !s.ctrl.Started() {
		t.Fatal("screen did not start")
	}
	return s
}

func TestInitStartsSessionAndShowsOffer(t *testing.T) {
	svc := &mockService{results: []*tutor.Result{diagnosticOffer()}}
	s := startedScreen(t, svc)

	if len(svc.ingests) != 1 || svc.ingests[0].Action != tutor.ActionStart {
		t.Fatalf("start request = %+v", svc.ingests)
	}

	view := s.View(80, 24)
	if !strings.Contains(view, "Before we jump into DSA") {
		t.Errorf("offer text missing from view:\n%s", view)
	}
	if !s.choiceMode {
		t.Error("choice mode not enabled for offer options")
	}
	if len(s.choices.Labels) != 2 {
		t.Errorf("choices = %v", s.choices.Labels)
	}
}

func TestDecliningOfferSendsQuickReply(t *testing.T) {
	svc := &mockService{results: []*tutor.Result{
		diagnosticOffer(),
		{Action: tutor.TagAdvance, UI: &tutor.UIPayload{}},
	}}
	s := startedScreen(t, svc)

	// Number key picks and confirms the second option.
	_, cmd := s.Update(keyPress('2'))
	drain(t, s, cmd)

	req := svc.ingests[1]
	if req.Action != tutor.ActionContinue || req.Message != "No" {
		t.Errorf("quick reply request = %+v", req)
	}

	view := s.View(80, 24)
	if !strings.Contains(view, "Looks good. Advancing to the next concept.") {
		t.Errorf("advance text missing from view:\n%s", view)
	}
	if !strings.Contains(view, "No") {
		t.Errorf("student echo missing from view:\n%s", view)
	}
}

func TestAnsweringQuestion(t *testing.T) {
	svc := &mockService{results: []*tutor.Result{
		{
			Action: tutor.TagAskQuestion,
			UI: &tutor.UIPayload{
				Question: &tutor.Question{
					ID:      "q-7",
					Prompt:  "Average complexity of merge sort?",
					Choices: []string{"O(n)", "O(n log n)"},
				},
			},
		},
		{
			Action: tutor.TagAnswerContent,
			UI:     &tutor.UIPayload{},
			Graded: &tutor.Graded{Correct: true, Skill: "sorting"},
		},
		{Action: tutor.TagAdvance, UI: &tutor.UIPayload{}},
	}}
	s := startedScreen(t, svc)

	if s.answerQID != "q-7" {
		t.Fatalf("pending question id = %q", s.answerQID)
	}

	// Select the second choice with the arrow keys.
	_, _ = s.Update(specialKey(tea.KeyDown))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	drain(t, s, cmd)

	req := svc.ingests[1]
	if req.Action != tutor.ActionAnswer || req.QuestionID != "q-7" || req.Answer != "O(n log n)" {
		t.Errorf("answer request = %+v", req)
	}

	view := s.View(80, 40)
	if !strings.Contains(view, "✔ Correct") {
		t.Errorf("graded badge missing from view:\n%s", view)
	}
}

func TestIncorrectAnswerShowsExpected(t *testing.T) {
	svc := &mockService{results: []*tutor.Result{
		{
			Action: tutor.TagAskQuestion,
			UI: &tutor.UIPayload{
				Question: &tutor.Question{
					ID:      "q-7",
					Prompt:  "Average complexity of merge sort?",
					Choices: []string{"O(n)", "O(n log n)"},
				},
			},
		},
		{
			Action: tutor.TagAnswerContent,
			UI:     &tutor.UIPayload{},
			Graded: &tutor.Graded{Correct: false, Expected: "O(n log n)", Skill: "sorting"},
		},
		{Action: tutor.TagAdvance, UI: &tutor.UIPayload{}},
	}}
	s := startedScreen(t, svc)

	_, cmd := s.Update(keyPress('1'))
	drain(t, s, cmd)

	view := s.View(80, 40)
	if !strings.Contains(view, "✘ Incorrect — expected: O(n log n)") {
		t.Errorf("graded badge missing from view:\n%s", view)
	}
}

func TestFreeTextMessage(t *testing.T) {
	svc := &mockService{}
	s := startedScreen(t, svc)

	for _, r := range "what is a heap?" {
		_, _ = s.Update(keyPress(r))
	}
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	drain(t, s, cmd)

	req := svc.ingests[1]
	if req.Action != tutor.ActionContentOnly || req.Message != "what is a heap?" {
		t.Errorf("free-text request = %+v", req)
	}
	if s.input.Value() != "" {
		t.Errorf("input not cleared: %q", s.input.Value())
	}
}

func TestBlankFreeTextIgnored(t *testing.T) {
	svc := &mockService{}
	s := startedScreen(t, svc)
	before := len(svc.ingests)

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	drain(t, s, cmd)

	if len(svc.ingests) != before {
		t.Error("blank message issued a request")
	}
}

func TestRationaleToggle(t *testing.T) {
	svc := &mockService{results: []*tutor.Result{diagnosticOffer()}}
	s := startedScreen(t, svc)

	if strings.Contains(s.View(80, 24), "fresh session") {
		t.Fatal("rationale visible before toggle")
	}

	_, _ = s.Update(ctrlKey('w'))
	if !strings.Contains(s.View(80, 24), "fresh session") {
		t.Error("rationale not visible after toggle")
	}

	_, _ = s.Update(ctrlKey('w'))
	if strings.Contains(s.View(80, 24), "fresh session") {
		t.Error("rationale visible after second toggle")
	}
}

func TestRestartClearsTranscript(t *testing.T) {
	svc := &mockService{results: []*tutor.Result{
		diagnosticOffer(),
		{Action: tutor.TagAdvance, UI: &tutor.UIPayload{}},
		diagnosticOffer(),
	}}
	s := startedScreen(t, svc)

	_, cmd := s.Update(keyPress('2'))
	drain(t, s, cmd)
	if len(s.ctrl.Turns()) != 3 {
		t.Fatalf("turns before restart = %d", len(s.ctrl.Turns()))
	}

	_, cmd = s.Update(ctrlKey('r'))
	drain(t, s, cmd)

	if len(s.ctrl.Turns()) != 1 {
		t.Errorf("turns after restart = %d, want 1", len(s.ctrl.Turns()))
	}
}

func TestFailedStartOffersRetry(t *testing.T) {
	svc := &mockService{err: errors.New("connection refused")}
	s := New(svc, nil)
	drain(t, s, s.Init())

	if s.ctrl.Started() {
		t.Fatal("started despite failure")
	}
	view := s.View(80, 24)
	if !strings.Contains(view, "Press R to retry.") {
		t.Errorf("retry hint missing from view:\n%s", view)
	}

	svc.err = nil
	svc.results = []*tutor.Result{diagnosticOffer()}
	_, cmd := s.Update(keyPress('r'))
	drain(t, s, cmd)

	if !s.ctrl.Started() {
		t.Error("retry did not start session")
	}
}

func TestTabMovesFocusBetweenChoicesAndInput(t *testing.T) {
	svc := &mockService{results: []*tutor.Result{diagnosticOffer()}}
	s := startedScreen(t, svc)

	if s.input.Focused() {
		t.Fatal("input focused while the choice list is active")
	}

	_, _ = s.Update(specialKey(tea.KeyTab))
	if s.choiceMode {
		t.Error("choice mode still active after tab")
	}
	if !s.input.Focused() {
		t.Error("input not focused after tab to text entry")
	}

	_, _ = s.Update(specialKey(tea.KeyTab))
	if !s.choiceMode {
		t.Error("choice mode not restored by second tab")
	}
	if s.input.Focused() {
		t.Error("input still focused while choices are active")
	}
}

func TestEscPopsScreen(t *testing.T) {
	svc := &mockService{}
	s := startedScreen(t, svc)

	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("no command returned for esc")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("esc did not pop the screen")
	}
}
