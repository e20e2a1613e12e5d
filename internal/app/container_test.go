package app

import (
	"context"
	"testing"

	"github.com/acme/vapi-caller/internal/config"
	telephonyMock "github.com/acme/vapi-caller/internal/telephony/mock"
	"github.com/acme/vapi-caller/internal/vapi"
	"github.com/acme/vapi-caller/pkg/logger"
)

func TestBuildWithMockProviderSkipsOptionalInfra(t *testing.T) {
	cfg := &config.Config{CallBridge: config.CallBridgeConfig{ProviderName: config.ProviderMock}}

	c, err := BuildWith(context.Background(), cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	if _, ok := c.Provider.(*telephonyMock.Provider); !ok {
		t.Fatalf("expected mock provider, got %T", c.Provider)
	}
	if c.Redis != nil || c.Kafka != nil || c.Guard != nil {
		t.Fatalf("expected optional infra to stay nil")
	}
	if c.HandlerSet() == nil {
		t.Fatalf("expected handler set")
	}
	if err := c.EnsureTopics(context.Background()); err != nil {
		t.Fatalf("expected no-op topic setup, got %v", err)
	}
}

func TestBuildWithVapiProvider(t *testing.T) {
	cfg := &config.Config{
		Vapi:       config.VapiConfig{APIKey: "k", BaseURL: "http://127.0.0.1:1"},
		CallBridge: config.CallBridgeConfig{ProviderName: config.ProviderVapi},
	}

	c, err := BuildWith(context.Background(), cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Provider.(*vapi.Client); !ok {
		t.Fatalf("expected vapi client, got %T", c.Provider)
	}
}
