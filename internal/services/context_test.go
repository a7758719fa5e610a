package services_test

import (
	"context"
	"testing"

	"webfonts/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithBuildID(ctx, "b-42")
	ctx = services.WithStage(ctx, "transform")
	ctx = services.WithLocale(ctx, "zh")
	ctx = services.WithEntry(ctx, "Noto Sans SC Variable")

	if id, ok := services.BuildIDFromContext(ctx); !ok || id != "b-42" {
		t.Fatalf("unexpected build id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "transform" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if locale, ok := services.LocaleFromContext(ctx); !ok || locale != "zh" {
		t.Fatalf("unexpected locale: %v %v", locale, ok)
	}
	if entry, ok := services.EntryFromContext(ctx); !ok || entry != "Noto Sans SC Variable" {
		t.Fatalf("unexpected entry: %v %v", entry, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithLocale(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.LocaleFromContext(ctx); ok {
		t.Fatal("expected no locale value")
	}
}
