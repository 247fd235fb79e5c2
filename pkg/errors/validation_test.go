package errors

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "wall.jpg")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"existing directory", dir, false},
		{"empty", "", true},
		{"missing", filepath.Join(dir, "nope"), true},
		{"regular file", file, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDirectory(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDirectory(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDirectory) {
				t.Errorf("expected INVALID_DIRECTORY, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateFrames(t *testing.T) {
	tests := []struct {
		input   int
		wantErr bool
	}{
		{1, false},
		{10, false},
		{1000, false},
		{0, true},
		{-3, true},
		{1001, true},
	}

	for _, tt := range tests {
		err := ValidateFrames(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFrames(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidatePeriod(t *testing.T) {
	if err := ValidatePeriod(time.Minute); err != nil {
		t.Errorf("positive period should pass: %v", err)
	}
	if err := ValidatePeriod(0); !Is(err, ErrCodeInvalidDuration) {
		t.Errorf("zero period should fail with INVALID_DURATION, got %v", err)
	}
}

func TestValidateDelayRange(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  time.Duration
		wantErr bool
	}{
		{"ordered", 10 * time.Millisecond, 50 * time.Millisecond, false},
		{"equal", 20 * time.Millisecond, 20 * time.Millisecond, false},
		{"zero", 0, 0, false},
		{"inverted", 50 * time.Millisecond, 10 * time.Millisecond, true},
		{"negative", -time.Millisecond, 10 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDelayRange(tt.lo, tt.hi)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDelayRange(%s, %s) error = %v, wantErr %v", tt.lo, tt.hi, err, tt.wantErr)
			}
		})
	}
}
