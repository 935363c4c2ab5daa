package keyboard_test

import (
	"strings"
	"testing"

	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		payload   keyboard.Payload
		want      string
		wantError bool
	}{
		{
			name:    "action only",
			payload: keyboard.Payload{Action: keyboard.ActionGoBack},
			want:    "goBack",
		},
		{
			name:    "action with owner",
			payload: keyboard.Payload{Action: keyboard.ActionConfirmSave, OwnerID: 1001},
			want:    "confirmSave|1001",
		},
		{
			name:    "action with arg and owner",
			payload: keyboard.Payload{Action: keyboard.ActionViewDetail, Arg: "10000002", OwnerID: 1001},
			want:    "viewDetail:10000002|1001",
		},
		{
			name:    "action with arg only",
			payload: keyboard.Payload{Action: keyboard.ActionSelectTemplate, Arg: "card_3"},
			want:    "selectTemplate:card_3",
		},
		{
			name:      "empty action",
			payload:   keyboard.Payload{Arg: "x"},
			wantError: true,
		},
		{
			name:      "exceeds limit",
			payload:   keyboard.Payload{Action: strings.Repeat("x", keyboard.CallbackDataLimitBytes+1)},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := keyboard.Encode(tt.payload)
			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    keyboard.Payload
		wantErr bool
	}{
		{
			name:  "action only",
			input: "goBack",
			want:  keyboard.Payload{Action: "goBack"},
		},
		{
			name:  "action with owner",
			input: "confirmSave|1001",
			want:  keyboard.Payload{Action: "confirmSave", OwnerID: 1001},
		},
		{
			name:  "action with arg and owner",
			input: "viewDetail:10000002|1001",
			want:  keyboard.Payload{Action: "viewDetail", Arg: "10000002", OwnerID: 1001},
		},
		{
			name:  "arg containing separator",
			input: "selectTemplate:card_3",
			want:  keyboard.Payload{Action: "selectTemplate", Arg: "card_3"},
		},
		{
			name:    "empty data",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "non-numeric owner",
			input:   "confirmSave|abc",
			wantErr: true,
		},
		{
			name:    "negative owner",
			input:   "confirmSave|-5",
			wantErr: true,
		},
		{
			name:    "zero owner",
			input:   "confirmSave|0",
			wantErr: true,
		},
		{
			name:    "missing action",
			input:   ":arg|1001",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := keyboard.Decode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payloads := []keyboard.Payload{
		{Action: keyboard.ActionConfirmSave, OwnerID: 9999999999},
		{Action: keyboard.ActionConfirmDiscard, OwnerID: 1},
		{Action: keyboard.ActionViewDetail, Arg: "10000012", OwnerID: 1001},
		{Action: keyboard.ActionTemplateMenu, Arg: "profile"},
		{Action: keyboard.ActionSelectTemplate, Arg: "card_5"},
	}

	for _, p := range payloads {
		data, err := keyboard.Encode(p)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", p, err)
		}

		decoded, err := keyboard.Decode(data)
		if err != nil {
			t.Fatalf("Decode(%q): %v", data, err)
		}

		if decoded != p {
			t.Errorf("round trip mismatch: got %+v, want %+v", decoded, p)
		}
	}
}

func TestSplitTemplateArg(t *testing.T) {
	tests := []struct {
		name         string
		arg          string
		wantCategory string
		wantIndex    int
		wantErr      bool
	}{
		{name: "card index", arg: "card_3", wantCategory: "card", wantIndex: 3},
		{name: "profile index", arg: "profile_1", wantCategory: "profile", wantIndex: 1},
		{name: "no separator", arg: "card3", wantErr: true},
		{name: "missing index", arg: "card_", wantErr: true},
		{name: "missing category", arg: "_3", wantErr: true},
		{name: "non-numeric index", arg: "card_x", wantErr: true},
		{name: "zero index", arg: "card_0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, index, err := keyboard.SplitTemplateArg(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if category != tt.wantCategory || index != tt.wantIndex {
				t.Errorf("SplitTemplateArg(%q) = (%q, %d), want (%q, %d)",
					tt.arg, category, index, tt.wantCategory, tt.wantIndex)
			}
		})
	}
}
