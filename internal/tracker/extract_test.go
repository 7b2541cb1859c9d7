package tracker

import "testing"

func TestExtract(t *testing.T) {
	e := NewExtractor("org/repo")

	tests := []struct {
		name string
		text string
		want Ref
		ok   bool
	}{
		{
			name: "short token",
			text: "fixes #42",
			want: Ref{Repo: "org/repo", Number: 42},
			ok:   true,
		},
		{
			name: "short token mid-sentence",
			text: "see issue #7 for details",
			want: Ref{Repo: "org/repo", Number: 7},
			ok:   true,
		},
		{
			name: "plain issue URL",
			text: "tracked at https://github.com/other/project/issues/123",
			want: Ref{Repo: "other/project", Number: 123},
			ok:   true,
		},
		{
			name: "slack wrapped URL",
			text: "see <https://github.com/org/repo/issues/55|#55>",
			want: Ref{Repo: "org/repo", Number: 55},
			ok:   true,
		},
		{
			name: "URL wins over short token",
			text: "#1 and https://github.com/org/repo/issues/2",
			want: Ref{Repo: "org/repo", Number: 2},
			ok:   true,
		},
		{
			name: "multiline reply text",
			text: "root message\nSupport Bot\nhttps://github.com/org/repo/issues/9",
			want: Ref{Repo: "org/repo", Number: 9},
			ok:   true,
		},
		{name: "no reference", text: "just a chat message"},
		{name: "empty text", text: ""},
		{name: "hash without number", text: "see # for details"},
		{name: "anchor inside word", text: "color #42aaff is nice", want: Ref{Repo: "org/repo", Number: 42}, ok: false},
		{name: "pull request URL", text: "https://github.com/org/repo/pull/3"},
		{name: "channel reference", text: "join <#C0123456|support>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Extract(tt.text)
			if ok != tt.ok {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractWithoutConfiguredRepo(t *testing.T) {
	e := NewExtractor("")

	if _, ok := e.Extract("fixes #42"); ok {
		t.Errorf("Short token must not resolve without a configured repo")
	}
	got, ok := e.Extract("https://github.com/org/repo/issues/3")
	if !ok || got.Repo != "org/repo" {
		t.Errorf("URL reference must still resolve, got %v ok=%v", got, ok)
	}
}

func TestRefString(t *testing.T) {
	ref := Ref{Repo: "org/repo", Number: 42}
	if ref.String() != "org/repo#42" {
		t.Errorf("Expected 'org/repo#42', got %q", ref.String())
	}
}
