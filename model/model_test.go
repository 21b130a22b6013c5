package model

import (
	"context"
	"errors"
	"testing"

	"github.com/salespage/chatkit/core"
)

// Interface compliance (compile-time assertion)
var _ Model = (*MockModel)(nil)

func TestMockModel_CannedResponses(t *testing.T) {
	m := NewMockModel()
	m.AddResponse("qual o preço?", "O investimento é de R$ 497,00.")

	resp, err := m.Generate(context.Background(), Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "qual o preço?"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "O investimento é de R$ 497,00." {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.FinishReason != "stop" {
		t.Fatalf("unexpected finish reason: %q", resp.FinishReason)
	}
}

func TestMockModel_DefaultEcho(t *testing.T) {
	m := NewMockModel()
	resp, err := m.Generate(context.Background(), Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "oi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "Mock response to: oi" {
		t.Fatalf("unexpected default: %q", resp.Text)
	}
}

func TestMockModel_FailAndEmpty(t *testing.T) {
	m := NewMockModel()
	if _, err := m.Generate(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error for empty messages")
	}

	boom := errors.New("provider down")
	m.Fail(boom)
	_, err := m.Generate(context.Background(), Request{
		Messages: []core.Message{{Role: core.RoleUser, Content: "oi"}},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
}

func TestMockModel_Info(t *testing.T) {
	m := NewMockModel()
	info := m.Info()
	if info.Provider != "mock" || info.Name != "mock" {
		t.Fatalf("unexpected info: %+v", info)
	}
}
