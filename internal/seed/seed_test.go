package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ibeckermayer/reelscribe/internal/search"
	"github.com/ibeckermayer/reelscribe/internal/types"
)

func TestExtractReelID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.instagram.com/reel/Cxyz123/", "Cxyz123"},
		{"https://www.instagram.com/reels/Cxyz123/", "Cxyz123"},
		{"https://www.instagram.com/reel/Cxyz123/?igsh=abc", "Cxyz123"},
		{"https://www.instagram.com/p/Cxyz123/", ""},
		{"https://www.instagram.com/", ""},
		{"https://www.instagram.com/reel/", ""},
		{"not a url at all \x7f", ""},
	}
	for _, tt := range tests {
		if got := ExtractReelID(tt.url); got != tt.want {
			t.Errorf("ExtractReelID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDirectRejectsMalformedSeed(t *testing.T) {
	tests := []string{
		"instagram.com/reel/abc/", // not absolute
		"https://www.instagram.com/stories/someone/",
		"ftp://www.instagram.com/reel/abc/",
		"",
	}
	for _, url := range tests {
		if _, err := Direct(nil, url); !errors.Is(err, ErrInvalidSeed) {
			t.Errorf("Direct(%q) err = %v, want ErrInvalidSeed", url, err)
		}
	}
}

type fakeSurface struct {
	feed []string
	pos  int
}

func (f *fakeSurface) Navigate(_ context.Context, url string) (string, error) {
	return url, nil
}

func (f *fakeSurface) ScrollToNext(_ context.Context) (string, error) {
	if f.pos >= len(f.feed) {
		return "", errors.New("no more reels")
	}
	url := f.feed[f.pos]
	f.pos++
	return url, nil
}

func TestDirectWalksFeed(t *testing.T) {
	surface := &fakeSurface{feed: []string{
		"https://www.instagram.com/reel/B/",
		"https://www.instagram.com/reel/C/",
	}}

	src, err := Direct(surface, "https://www.instagram.com/reel/A/")
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	defer src.Close()

	var ids []string
	for {
		cand, err := src.Next(context.Background())
		if errors.Is(err, ErrExhausted) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if cand.Origin != types.OriginDirect {
			t.Errorf("origin = %q, want direct", cand.Origin)
		}
		ids = append(ids, cand.ReelID)
	}

	want := []string{"A", "B", "C"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

// Scenario: a seed file with 4 URLs where one is malformed resolves to 3
// candidates with one soft-skip.
func TestFileSoftSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.txt")
	content := `https://www.instagram.com/reel/AAA/

https://www.instagram.com/reel/BBB/
this-is-not-a-url
https://www.instagram.com/reel/CCC/
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	src, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	defer src.Close()

	var ids []string
	for {
		cand, err := src.Next(context.Background())
		if errors.Is(err, ErrExhausted) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if cand.Origin != types.OriginFile {
			t.Errorf("origin = %q, want file", cand.Origin)
		}
		ids = append(ids, cand.ReelID)
	}

	if len(ids) != 3 {
		t.Fatalf("got %d candidates %v, want 3", len(ids), ids)
	}
	if skipped := src.(*fileSource).Skipped(); skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
}

func TestFileUnreadable(t *testing.T) {
	if _, err := File(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, ErrSeedFile) {
		t.Errorf("err = %v, want ErrSeedFile", err)
	}
}

type fakeSearcher struct {
	links []string
	err   error
	calls int
}

func (f *fakeSearcher) Search(_ context.Context, _ search.Query) ([]string, error) {
	f.calls++
	return f.links, f.err
}

func TestSearchFiltersAndDedups(t *testing.T) {
	client := &fakeSearcher{links: []string{
		"https://www.instagram.com/reel/AAA/",
		"https://example.com/blog/tokyo",
		"https://www.instagram.com/reel/BBB/",
		"https://www.instagram.com/reel/AAA/?igsh=dup",
	}}

	src := Search(client, types.SearchFilterSpec{Keywords: "tokyo"})
	defer src.Close()

	var ids []string
	for {
		cand, err := src.Next(context.Background())
		if errors.Is(err, ErrExhausted) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		ids = append(ids, cand.ReelID)
	}

	want := []string{"AAA", "BBB"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	if client.calls != 1 {
		t.Errorf("provider called %d times, want 1 (lazy, single fetch)", client.calls)
	}
}

func TestSearchIsLazy(t *testing.T) {
	client := &fakeSearcher{}
	Search(client, types.SearchFilterSpec{Keywords: "tokyo"})
	if client.calls != 0 {
		t.Errorf("provider called before first Next")
	}
}

func TestSearchProviderFailureSurfaces(t *testing.T) {
	client := &fakeSearcher{err: search.ErrProvider}
	src := Search(client, types.SearchFilterSpec{Keywords: "tokyo"})

	_, err := src.Next(context.Background())
	if !errors.Is(err, search.ErrProvider) {
		t.Errorf("err = %v, want ErrProvider", err)
	}
}
