// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"

	"github.com/charmbracelet/glamour"
)

// stubRender replaces the glamour renderer for the duration of a test.
func stubRender(t *testing.T) {
	t.Helper()
	original := render
	t.Cleanup(func() { render = original })
	render = func(in string, _ string) (string, error) {
		return in, nil
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{ArchiveNotFoundId, false, "Installer file not found"},
		{NoSectionsId, false, "Nothing to install"},
		{ExtractionFailedId, false, "Extraction failed"},
		{CommandFailedId, false, "install command failed"},
		{BuildFailedId, false, "Could not build"},
		{InputNotFoundId, false, "Input file not found"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{InvalidRuntimeModeId, false, "Invalid runtime"},
		{ShellNotFoundId, false, "No shell found"},
		{PermissionDeniedId, false, "Permission denied"},
		{Id(9999), true, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			t.Parallel()

			got := Get(tt.id)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}
			if got == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if got.Id() != tt.id {
				t.Errorf("Get(%d).Id() = %d", tt.id, got.Id())
			}
			if !strings.Contains(string(got.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestValuesSortedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(PermissionDeniedId) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), PermissionDeniedId)
	}
	for i, v := range values {
		if v.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, v.Id(), i+1)
		}
		if v.MarkdownMsg() == "" {
			t.Errorf("issue %d has empty markdown", v.Id())
		}
	}
}

func TestIssueLinksAreCloned(t *testing.T) {
	t.Parallel()

	is := &Issue{
		id:       Id(9000),
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}

	links := is.DocLinks()
	links[0] = "modified"
	if is.DocLinks()[0] != "https://docs.example.com" {
		t.Error("DocLinks() should return a clone")
	}

	ext := is.ExtLinks()
	ext[0] = "modified"
	if is.ExtLinks()[0] != "https://external.example.com" {
		t.Error("ExtLinks() should return a clone")
	}
}

//nolint:paralleltest // Mutates the package-level renderer.
func TestIssueRender(t *testing.T) {
	stubRender(t)

	withLinks := &Issue{
		id:       Id(9001),
		mdMsg:    "# Test Issue",
		docLinks: []HttpLink{"https://docs.example.com"},
	}
	rendered, err := withLinks.Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "See also") || !strings.Contains(rendered, "https://docs.example.com") {
		t.Errorf("Render() = %q, want a See also section with the link", rendered)
	}

	plain := &Issue{id: Id(9002), mdMsg: "# No links"}
	rendered, err = plain.Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if strings.Contains(rendered, "See also") {
		t.Errorf("Render() = %q, want no See also section", rendered)
	}

	for _, v := range Values() {
		out, err := v.Render("notty")
		if err != nil || out == "" {
			t.Errorf("issue %d failed to render: %q, %v", v.Id(), out, err)
		}
	}
}

func TestIssueRenderWithGlamour(t *testing.T) {
	t.Parallel()

	out, err := glamour.Render(string(Get(NoSectionsId).MarkdownMsg()), "notty")
	if err != nil {
		t.Fatalf("glamour render failed: %v", err)
	}
	if !strings.Contains(out, "Nothing to install") {
		t.Errorf("rendered output lost the heading: %q", out)
	}
}
