package yamlutil

import (
	"errors"
	"strings"
	"testing"
)

type testDoc struct {
	Title    string   `yaml:"title"`
	Sections []string `yaml:"sections"`
}

func TestUnmarshalStrict(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		var doc testDoc
		data := []byte("title: Report\nsections:\n  - one\n  - two\n")
		if err := UnmarshalStrict(data, &doc); err != nil {
			t.Fatalf("UnmarshalStrict() error = %v", err)
		}
		if doc.Title != "Report" {
			t.Errorf("Title = %q, want %q", doc.Title, "Report")
		}
		if len(doc.Sections) != 2 {
			t.Errorf("len(Sections) = %d, want 2", len(doc.Sections))
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		var doc testDoc
		data := []byte("title: Report\nbogus: field\n")
		if err := UnmarshalStrict(data, &doc); err == nil {
			t.Error("UnmarshalStrict() = nil, want error for unknown field")
		}
	})

	t.Run("empty data returns ErrNilData", func(t *testing.T) {
		var doc testDoc
		if err := UnmarshalStrict(nil, &doc); !errors.Is(err, ErrNilData) {
			t.Errorf("error = %v, want ErrNilData", err)
		}
	})

	t.Run("nil destination returns ErrNilDestination", func(t *testing.T) {
		if err := UnmarshalStrict([]byte("a: b"), nil); !errors.Is(err, ErrNilDestination) {
			t.Errorf("error = %v, want ErrNilDestination", err)
		}
	})

	t.Run("oversized input returns ErrInputTooLarge", func(t *testing.T) {
		old := MaxInputSize
		MaxInputSize = 8
		defer func() { MaxInputSize = old }()

		var doc testDoc
		if err := UnmarshalStrict([]byte("title: Report\n"), &doc); !errors.Is(err, ErrInputTooLarge) {
			t.Errorf("error = %v, want ErrInputTooLarge", err)
		}
	})
}

func TestMarshal(t *testing.T) {
	doc := testDoc{Title: "Report", Sections: []string{"one"}}
	out, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), "title: Report") {
		t.Errorf("output missing title: %s", out)
	}

	// Deterministic: same input, same bytes.
	again, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() second call error = %v", err)
	}
	if string(out) != string(again) {
		t.Error("Marshal() output differs between identical calls")
	}
}
