package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "web", false},
		{"valid with slash", "deployment/api", false},
		{"valid with dash", "db-primary", false},
		{"valid unicode", "sérveur", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxIDLength+1), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"player", "player"},
		{"scenes/main.tscn", "scenes_main_tscn"},
		{"res://ui/hud.gd", "res___ui_hud_gd"},
		{"a b-c_d", "a_b-c_d"},
		{"", ""},
		{"///", ""},
		{"ünï", "_n_"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeID(tt.input); got != tt.want {
				t.Errorf("SanitizeID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if got := SanitizeID(strings.Repeat("x", 300)); len(got) != maxDerivedIDLength {
		t.Errorf("len(SanitizeID(long)) = %d, want %d", len(got), maxDerivedIDLength)
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Main database", "Main database"},
		{"trim", "  api  ", "api"},
		{"markup", `<b>"web"</b>`, "bweb/b"},
		{"quotes", "it's `here`", "its here"},
		{"null", "a\x00b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	long := strings.Repeat("é", MaxTextLength+10)
	if got := []rune(SanitizeText(long)); len(got) != MaxTextLength {
		t.Errorf("len(SanitizeText(long)) = %d runes, want %d", len(got), MaxTextLength)
	}
}

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "project.json", false},
		{"absolute", "/tmp/project.json", false},
		{"nested", "out/graphs/infra.json", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"null byte", "a\x00.json", true},
		{"control char", "a\x01.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
