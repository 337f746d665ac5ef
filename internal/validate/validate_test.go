package validate

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"give <player> diamond", "give <player> diamond"},
		{"<b>", "|lt||lt|b|gt||gt|"},
		{"<b>bold</b>", "|lt||lt|b|gt||gt|bold|lt||lt|/b|gt||gt|"},
		{"<target>", "|lt||lt|target|gt||gt|"},
		{"<PLAYER>", "|lt|PLAYER|gt|"},
		{"a < b > c", "a |lt||lt| b |gt||gt| c"},
		{"a < b", "a |lt| b"},
		{"x > y", "x |gt| y"},
		{"<player><other>", "<player>|lt||lt|other|gt||gt|"},
		{"<<player>>", "|lt||lt|<player>|gt||gt|"},
		{"op <player> && <world>", "op <player> && |lt||lt|world|gt||gt|"},
	}

	for _, tt := range tests {
		got := Sanitize(tt.input)
		if got != tt.expected {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSanitizeLeavesOnlyPlaceholderBrackets(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		"<player> <Player> <player",
		"give <player> <item> <count>",
		">>><<<",
		"<player>>",
	}

	for _, in := range inputs {
		out := Sanitize(in)
		rest := strings.ReplaceAll(out, "<player>", "")
		if strings.ContainsAny(rest, "<>") {
			t.Errorf("Sanitize(%q) = %q still contains brackets outside the placeholder", in, out)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"give <player> diamond",
		"<b>hi</b>",
		"a<b",
		"<<player>>",
		"|lt|x|gt|",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		v, min, max int
		expected    int
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, math.MaxInt32, 0},
		{math.MinInt32, 0, math.MaxInt32, 0},
	}

	for _, tt := range tests {
		got := ClampInt(tt.v, tt.min, tt.max)
		if got != tt.expected {
			t.Errorf("ClampInt(%d, %d, %d) = %d, want %d", tt.v, tt.min, tt.max, got, tt.expected)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "", true},
		{"   ", "", true},
		{"  Sword ", "Sword", false},
		{strings.Repeat("a", MaxStringLength), strings.Repeat("a", MaxStringLength), false},
		{strings.Repeat("a", MaxStringLength+1), "", true},
		{strings.Repeat("ä", MaxStringLength), strings.Repeat("ä", MaxStringLength), false},
	}

	for _, tt := range tests {
		got, err := String(tt.input, "item_name")
		if (err != nil) != tt.wantErr {
			t.Errorf("String(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStringFieldError(t *testing.T) {
	_, err := String("", "item_display")
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FieldError, got %T", err)
	}
	if fe.Field != "item_display" {
		t.Errorf("expected field 'item_display', got %q", fe.Field)
	}
	if err.Error() != "item_display cannot be empty" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestPlayerName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"Alice", false},
		{"bob_42", false},
		{"", true},
		{"bad name", true},
		{"<player>", true},
		{"Ålice", true},
	}

	for _, tt := range tests {
		_, err := PlayerName(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("PlayerName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"give diamond 1", false},
		{"give <player> diamond", true},
		{"kill @a", true},
		{"", true},
	}

	for _, tt := range tests {
		_, err := Command(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Command(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestInt(t *testing.T) {
	if _, err := Int(5, 0, 10, "used"); err != nil {
		t.Errorf("expected 5 in range, got %v", err)
	}
	if _, err := Int(-1, 0, 10, "used"); err == nil {
		t.Error("expected error for value below range")
	}
	if _, err := Int(11, 0, 10, "used"); err == nil {
		t.Error("expected error for value above range")
	}
}

func TestIsValidPlayerName(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"Steve", true},
		{"a", true},
		{"sixteen_chars_ok", true},
		{"seventeen_chars_x", false},
		{"", false},
		{"has-dash", false},
	}

	for _, tt := range tests {
		if got := IsValidPlayerName(tt.name); got != tt.expected {
			t.Errorf("IsValidPlayerName(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}
