package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/waqaskhan137/fintips/core"
	"github.com/waqaskhan137/fintips/tools"
)

func providerRequest() *Request {
	return &Request{
		Model:  "test-model",
		System: "be helpful",
		Messages: []core.Message{
			core.NewUserMessage("tips please"),
			core.NewAssistantMessageWithBlocks([]core.ContentBlock{toolUse("call_1", "checkBudget", `{"a":1}`)}),
			core.NewToolResultMessage([]core.ToolResultContent{{ToolUseID: "call_1", Content: `{"tips":[]}`}}),
		},
		Tools: []core.ToolDefinition{{
			ToolName:        "submit_tips",
			ToolDescription: "submit",
			InputSchema:     tools.TipsSchema("tips"),
		}},
		ToolChoice: ToolChoiceAny,
		MaxTokens:  256,
	}
}

func TestOpenAIModel_Generate(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "c1",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_2",
						"type": "function",
						"function": {"name": "submit_tips", "arguments": "{\"tips\":[\"save more\"]}"}
					}]
				}
			}],
			"usage": {"prompt_tokens": 11, "completion_tokens": 5, "total_tokens": 16}
		}`)
	}))
	defer srv.Close()

	resp, err := NewOpenAIModel("key", srv.URL).Generate(context.Background(), providerRequest())
	if err != nil {
		t.Fatal(err)
	}
	if resp.StopReason != StopToolUse || resp.Usage.InputTokens != 11 || resp.Usage.OutputTokens != 5 {
		t.Fatalf("resp = %+v", resp)
	}
	if len(resp.Blocks) != 1 || resp.Blocks[0].Name != "submit_tips" || string(resp.Blocks[0].Input) != `{"tips":["save more"]}` {
		t.Fatalf("blocks = %+v", resp.Blocks)
	}

	if body["tool_choice"] != "required" || body["model"] != "test-model" {
		t.Fatalf("body = %v", body)
	}
	msgs := body["messages"].([]interface{})
	roles := make([]string, 0, len(msgs))
	for _, m := range msgs {
		roles = append(roles, m.(map[string]interface{})["role"].(string))
	}
	if strings.Join(roles, ",") != "system,user,assistant,tool" {
		t.Fatalf("roles = %v", roles)
	}
}

func TestAnthropicModel_Generate(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "key" {
			t.Errorf("api key header = %q", r.Header.Get("X-Api-Key"))
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "test-model",
			"stop_reason": "tool_use",
			"content": [
				{"type": "text", "text": "Here you go."},
				{"type": "tool_use", "id": "toolu_1", "name": "submit_tips", "input": {"tips": ["save more"]}}
			],
			"usage": {"input_tokens": 20, "output_tokens": 7}
		}`)
	}))
	defer srv.Close()

	resp, err := NewAnthropicModel("key", srv.URL).Generate(context.Background(), providerRequest())
	if err != nil {
		t.Fatal(err)
	}
	if resp.StopReason != StopToolUse || resp.Usage.TotalTokens() != 27 {
		t.Fatalf("resp = %+v", resp)
	}
	msg := core.NewAssistantMessageWithBlocks(resp.Blocks)
	if msg.Text() != "Here you go." {
		t.Fatalf("text = %q", msg.Text())
	}
	uses := msg.ToolUses()
	if len(uses) != 1 || uses[0].ID != "toolu_1" {
		t.Fatalf("uses = %+v", uses)
	}
	var tips struct{ Tips []string }
	if err := json.Unmarshal(uses[0].Input, &tips); err != nil || len(tips.Tips) != 1 {
		t.Fatalf("input = %s (%v)", uses[0].Input, err)
	}

	if choice := body["tool_choice"].(map[string]interface{}); choice["type"] != "any" {
		t.Fatalf("tool_choice = %v", choice)
	}
	if msgs := body["messages"].([]interface{}); len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
}
