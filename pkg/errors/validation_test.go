package errors

import "testing"

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "handbook/policies.json", false},
		{"valid nested", "2024/q1/annual-report.json", false},
		{"valid filename only", "outline.json", false},
		{"valid with dots", "v1.2.3/outline.json", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateDocName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "annual-report", false},
		{"object id", "65f1c0ffee00000000000001", false},
		{"with spaces", "Annual Report 2024", false},
		{"with dot", "report.v2", false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", string(make([]byte, 300)), true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"control char", "a\x07b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateDocName(%q) code = %q", tt.input, GetCode(err))
			}
		})
	}
}
