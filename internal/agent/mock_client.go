package agent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// onePixelPNG is a valid 1x1 transparent PNG.
const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// MockClient provides canned AI responses for tests and offline use
type MockClient struct {
	mu        sync.Mutex
	responses []mockResponse
	fallback  string
	err       error
	calls     []MockCall
}

type mockResponse struct {
	match    string
	response string
}

// MockCall records one request seen by the mock.
type MockCall struct {
	System string
	User   string
	JSON   bool
}

// NewMockClient creates a mock AI client with responses for every
// assistant operation.
func NewMockClient() *MockClient {
	m := &MockClient{fallback: `{"message": "Mock response"}`}
	m.On("book plot and chapter structure", `{
		"title": "The Lighthouse Keeper",
		"plotSummary": "A keeper guards a light that ships can no longer see.",
		"chapters": [
			{"title": "Arrival", "objective": "Introduce the keeper and the dark coast"},
			{"title": "The Storm", "objective": "Force the keeper to leave the tower"},
			{"title": "Dawn", "objective": "Resolve what the light was really for"}
		]
	}`)
	m.On("layout parameters", `{
		"paperSize": "US Trade (6 x 9 in)",
		"fontScale": 1.05,
		"margins": "14% 11%",
		"columns": 1,
		"lineHeight": 1.55,
		"styleName": "Quiet Harbour",
		"fontFamily": "serif"
	}`)
	m.On("cover style parameters", `{
		"typography": "serif",
		"filter": "cold",
		"overlayOpacity": 0.35,
		"visualPrompt": "A lone lighthouse at dusk over a grey sea"
	}`)
	m.On("inspiring suggestion", "Let the storm arrive a page earlier so the calm feels borrowed.")
	m.On("refine the following text", "The sea was calm, and the keeper did not trust it.")
	return m
}

// On registers response for any request whose prompts contain match
// (case-insensitive). Earlier registrations win.
func (m *MockClient) On(match, response string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{match: strings.ToLower(match), response: response})
	return m
}

// FailWith makes every subsequent call return err. Nil restores normal replies.
func (m *MockClient) FailWith(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Calls returns the requests seen so far.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

func (m *MockClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.complete(ctx, systemPrompt, userPrompt, false)
}

// CompleteJSONWithSystem returns a mock response and checks it is proper JSON
func (m *MockClient) CompleteJSONWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	response, err := m.complete(ctx, systemPrompt, userPrompt, true)
	if err != nil {
		return "", err
	}

	var test interface{}
	if err := json.Unmarshal([]byte(CleanJSONResponse(response)), &test); err != nil {
		return "", fmt.Errorf("mock response is not valid JSON: %w", err)
	}
	return response, nil
}

// GenerateImage returns a tiny PNG.
func (m *MockClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if _, err := m.complete(ctx, "", prompt, false); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(onePixelPNG)
}

func (m *MockClient) complete(ctx context.Context, systemPrompt, userPrompt string, asJSON bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{System: systemPrompt, User: userPrompt, JSON: asJSON})
	if m.err != nil {
		return "", m.err
	}

	prompt := strings.ToLower(userPrompt)
	for _, r := range m.responses {
		if strings.Contains(prompt, r.match) {
			return r.response, nil
		}
	}
	return m.fallback, nil
}
