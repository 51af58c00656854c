package text_to_speech

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestFallback_Speak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		primaryErr      error
		secondaryErr    error
		expectSecondary int
		expectErr       bool
	}{
		{name: "primary succeeds", expectSecondary: 0},
		{name: "primary fails", primaryErr: errors.New("status 500"), expectSecondary: 1},
		{name: "primary not configured", primaryErr: ErrNotConfigured, expectSecondary: 1},
		{name: "wrapped not configured", primaryErr: fmt.Errorf("cloud: %w", ErrNotConfigured), expectSecondary: 1},
		{name: "playback fails", primaryErr: fmt.Errorf("%w: sink missing", ErrPlayback), expectSecondary: 0, expectErr: true},
		{name: "both fail", primaryErr: errors.New("timeout"), secondaryErr: errors.New("no espeak"), expectSecondary: 1, expectErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			primary := &fakeSynthesizer{name: "cloud", err: tt.primaryErr}
			secondary := &fakeSynthesizer{name: "local", err: tt.secondaryErr}

			err := NewFallback(primary, secondary, zaptest.NewLogger(t).Sugar()).Speak(context.Background(), "hello", "en")

			if (err != nil) != tt.expectErr {
				t.Errorf("unexpected error %v", err)
			}
			if len(primary.calls) != 1 {
				t.Errorf("expected primary to be tried once, got %d", len(primary.calls))
			}
			if len(secondary.calls) != tt.expectSecondary {
				t.Errorf("expected %d secondary calls, got %d", tt.expectSecondary, len(secondary.calls))
			}
		})
	}
}

func TestFallback_CancelledContextDoesNotFallBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &fakeSynthesizer{name: "cloud", err: context.Canceled}
	secondary := &fakeSynthesizer{name: "local"}

	err := NewFallback(primary, secondary, nil).Speak(ctx, "hello", "en")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(secondary.calls) != 0 {
		t.Error("secondary must not run after cancellation")
	}
}

func TestSelect(t *testing.T) {
	cloud := &fakeSynthesizer{name: "cloud"}
	local := &fakeSynthesizer{name: "local"}

	synth, err := Select(ProviderCloud, cloud, local, nil)
	if err != nil || synth.Name() != "cloud+local" {
		t.Errorf("expected cloud with local fallback, got %v, %v", synth, err)
	}

	synth, err = Select(ProviderLocal, cloud, local, nil)
	if err != nil || synth.Name() != "local" {
		t.Errorf("expected local only, got %v, %v", synth, err)
	}

	if _, err := Select("festival", cloud, local, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}
