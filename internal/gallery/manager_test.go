package gallery_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"paiid/internal/gallery"
	"paiid/internal/testutil"
)

type stubProvider struct {
	images [][]byte
	err    error
	calls  []string
}

func (p *stubProvider) GenerateImages(ctx context.Context, prompt string) ([][]byte, error) {
	p.calls = append(p.calls, prompt)
	return p.images, p.err
}

type managerFixture struct {
	m       *gallery.RepoManager
	fsys    *testutil.MockFilesystemManager
	journal gallery.Journal
	clock   *testutil.StubClock
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()

	f := &managerFixture{
		fsys:    testutil.NewMockFilesystemManager(),
		journal: testutil.NewTestJournal(t),
		clock:   testutil.NewTickingClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), time.Second),
	}
	f.m = gallery.NewRepoManager(f.fsys, "/repos", f.journal, testutil.NewTestVault(), nil, nil, f.clock, testutil.NewStubIDGenerator())
	if err := f.m.SwitchRepo("default"); err != nil {
		t.Fatalf("SwitchRepo failed: %v", err)
	}
	return f
}

func (f *managerFixture) kinds(t *testing.T) []gallery.EventKind {
	t.Helper()
	events, err := f.m.History(100)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	var kinds []gallery.EventKind
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func readAll(t *testing.T, fsys gallery.FilesystemManager, path string) []byte {
	t.Helper()
	r, err := fsys.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return data
}

func TestSwitchRepo(t *testing.T) {
	f := newManagerFixture(t)

	if f.m.CurrentRepo() != "default" {
		t.Errorf("CurrentRepo = %q, want default", f.m.CurrentRepo())
	}
	if kinds := f.kinds(t); len(kinds) != 0 {
		t.Errorf("initial selection journaled %v", kinds)
	}

	if err := f.m.SwitchRepo("cats"); err != nil {
		t.Fatalf("SwitchRepo(cats) failed: %v", err)
	}
	if ok, _ := f.fsys.Exists("/repos/cats"); !ok {
		t.Error("repo directory was not created")
	}
	if f.m.RepoPath() != filepath.Join("/repos", "cats") {
		t.Errorf("RepoPath = %q", f.m.RepoPath())
	}

	if err := f.m.SwitchRepo("cats"); err != nil {
		t.Fatalf("SwitchRepo(cats) again failed: %v", err)
	}

	events, err := f.m.History(10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Kind != gallery.EventSwitchRepo || events[0].Ref.Repo != "cats" || events[0].Detail != "default" {
		t.Errorf("event = %+v", events[0])
	}

	for _, bad := range []string{"", "..", "a/b"} {
		if err := f.m.SwitchRepo(bad); !errors.Is(err, gallery.ErrInvalidArgument) {
			t.Errorf("SwitchRepo(%q) = %v, want ErrInvalidArgument", bad, err)
		}
	}
	if f.m.CurrentRepo() != "cats" {
		t.Errorf("failed switch changed repo to %q", f.m.CurrentRepo())
	}
}

func TestListRepos(t *testing.T) {
	f := newManagerFixture(t)
	for _, name := range []string{"zebras", "cats"} {
		if err := f.m.SwitchRepo(name); err != nil {
			t.Fatal(err)
		}
	}

	repos, err := f.m.ListRepos()
	if err != nil {
		t.Fatalf("ListRepos failed: %v", err)
	}
	if want := []string{"cats", "default", "zebras"}; !slices.Equal(repos, want) {
		t.Errorf("repos = %v, want %v", repos, want)
	}

	empty := gallery.NewRepoManager(testutil.NewMockFilesystemManager(), "/nowhere", nil, nil, nil, nil, nil, nil)
	repos, err = empty.ListRepos()
	if err != nil || len(repos) != 0 {
		t.Errorf("ListRepos on missing root = (%v, %v), want empty", repos, err)
	}
}

func TestGenerateEntry(t *testing.T) {
	f := newManagerFixture(t)

	ref, path, err := f.m.GenerateEntry("Sad rat")
	if err != nil {
		t.Fatalf("GenerateEntry failed: %v", err)
	}
	want := gallery.PromptDirectoryRef{Repo: "default", Date: "2024-01-15", Time: "10:30:00.000000", Prompt: "Sad rat", Name: "10:30:00.000000_Sad rat"}
	if ref != want {
		t.Errorf("ref = %+v, want %+v", ref, want)
	}
	if wantPath := "/repos/default/2024-01-15/10:30:00.000000_Sad rat"; path != wantPath {
		t.Errorf("path = %q, want %q", path, wantPath)
	}
	if ok, _ := f.fsys.Exists(path); !ok {
		t.Error("entry directory was not created")
	}
	if kinds := f.kinds(t); !slices.Equal(kinds, []gallery.EventKind{gallery.EventGenerate}) {
		t.Errorf("journal kinds = %v", kinds)
	}
}

func TestGenerateEntry_Errors(t *testing.T) {
	f := newManagerFixture(t)
	if _, _, err := f.m.GenerateEntry("  "); !errors.Is(err, gallery.ErrInvalidArgument) {
		t.Errorf("blank prompt error = %v, want ErrInvalidArgument", err)
	}

	unselected := gallery.NewRepoManager(testutil.NewMockFilesystemManager(), "/repos", nil, nil, nil, nil, nil, nil)
	if _, _, err := unselected.GenerateEntry("x"); err == nil {
		t.Error("GenerateEntry without a repo succeeded")
	}
}

func TestGenerateEntry_PromptWithSeparators(t *testing.T) {
	f := newManagerFixture(t)

	ref, path, err := f.m.GenerateEntry("cats/dogs_50%")
	if err != nil {
		t.Fatalf("GenerateEntry failed: %v", err)
	}
	if filepath.Dir(path) != "/repos/default/2024-01-15" {
		t.Errorf("prompt escaped its date folder: %q", path)
	}

	res := f.m.GetImages(1, nil, gallery.Forward)
	if res.HasError() || len(res.Results) != 1 {
		t.Fatalf("GetImages = %+v", res)
	}
	if got := res.Results[0].Prompt; got != ref.Prompt {
		t.Errorf("prompt read back as %q, want %q", got, ref.Prompt)
	}
}

func TestGenerateEntry_NewestFirst(t *testing.T) {
	f := newManagerFixture(t)
	for _, prompt := range []string{"first", "second", "third"} {
		if _, _, err := f.m.GenerateEntry(prompt); err != nil {
			t.Fatal(err)
		}
	}

	res := f.m.GetImages(10, nil, gallery.Forward)
	if res.HasError() {
		t.Fatal(res.ErrorMessage)
	}
	if got, want := testutil.Prompts(res.Results), []string{"third", "second", "first"}; !slices.Equal(got, want) {
		t.Errorf("prompts = %v, want %v", got, want)
	}
}

func TestSaveImage(t *testing.T) {
	f := newManagerFixture(t)
	provider := &stubProvider{images: [][]byte{[]byte("one"), []byte("two")}}

	entry, err := f.m.SaveImage(context.Background(), "Sad rat", provider)
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if entry.Num() != 2 {
		t.Fatalf("entry has %d images, want 2", entry.Num())
	}
	for i, want := range []string{"one", "two"} {
		if filepath.Base(entry.ImagePaths[i]) != []string{"1.png", "2.png"}[i] {
			t.Errorf("image %d named %s", i, entry.ImagePaths[i])
		}
		if got := readAll(t, f.fsys, entry.ImagePaths[i]); string(got) != want {
			t.Errorf("image %d = %q, want %q", i, got, want)
		}
	}
	if !slices.Equal(provider.calls, []string{"Sad rat"}) {
		t.Errorf("provider calls = %v", provider.calls)
	}

	latest, ok := f.m.GetLatestEntry()
	if !ok || latest.PromptDirectoryRef != entry.PromptDirectoryRef {
		t.Errorf("latest = %+v, want the saved entry", latest)
	}
}

func TestSaveImage_ProviderFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
	}{
		{"provider error", &stubProvider{err: errors.New("quota exceeded")}},
		{"no images", &stubProvider{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newManagerFixture(t)
			if _, err := f.m.SaveImage(context.Background(), "Sad rat", tt.provider); err == nil {
				t.Fatal("SaveImage succeeded")
			}
			if _, ok := f.m.GetLatestEntry(); ok {
				t.Error("failed generation left an entry behind")
			}
		})
	}
}

func TestSaveImage_BlankPromptNotSent(t *testing.T) {
	f := newManagerFixture(t)
	provider := &stubProvider{images: [][]byte{[]byte("x")}}

	if _, err := f.m.SaveImage(context.Background(), "", provider); !errors.Is(err, gallery.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
	if len(provider.calls) != 0 {
		t.Errorf("provider called with %v", provider.calls)
	}
}

func TestDeleteEntry(t *testing.T) {
	f := newManagerFixture(t)
	testutil.Populate(t, f.fsys, repoPath, testutil.RepoLayout{
		"2024-01-14": {
			"03:03:45.522668_Shrek":  {"1.png", "2.png", "3.png"},
			"01:03:45.522668_Donkey": {"1.png"},
		},
	})
	shrek := gallery.PromptDirectoryRef{Date: "2024-01-14", Time: "03:03:45.522668", Prompt: "Shrek"}

	n, err := f.m.DeleteEntry(shrek)
	if err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if n != 3 {
		t.Errorf("removed %d images, want 3", n)
	}
	if ok, _ := f.fsys.Exists(filepath.Join(repoPath, "2024-01-14", "03:03:45.522668_Shrek")); ok {
		t.Error("entry directory still exists")
	}

	n, err = f.m.DeleteEntry(shrek)
	if err != nil || n != 0 {
		t.Errorf("second delete = (%d, %v), want (0, nil)", n, err)
	}

	res := f.m.GetImages(10, nil, gallery.Forward)
	if got := testutil.Prompts(res.Results); !slices.Equal(got, []string{"Donkey"}) {
		t.Errorf("remaining prompts = %v", got)
	}
	if kinds := f.kinds(t); !slices.Equal(kinds, []gallery.EventKind{gallery.EventDelete}) {
		t.Errorf("journal kinds = %v, want one delete", kinds)
	}
}

func TestDeleteEntry_InvalidRef(t *testing.T) {
	f := newManagerFixture(t)
	bad := gallery.PromptDirectoryRef{Date: "..", Time: "..", Prompt: "x"}

	if _, err := f.m.DeleteEntry(bad); !errors.Is(err, gallery.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
	if ok, _ := f.fsys.Exists("/repos"); !ok {
		t.Error("repos root removed")
	}
}

func TestHistory(t *testing.T) {
	f := newManagerFixture(t)
	ref, _, err := f.m.GenerateEntry("Sad rat")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.m.DeleteEntry(ref); err != nil {
		t.Fatal(err)
	}
	if err := f.m.SwitchRepo("cats"); err != nil {
		t.Fatal(err)
	}

	want := []gallery.EventKind{gallery.EventSwitchRepo, gallery.EventDelete, gallery.EventGenerate}
	if kinds := f.kinds(t); !slices.Equal(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}

	events, err := f.m.History(1)
	if err != nil || len(events) != 1 {
		t.Fatalf("History(1) = (%d events, %v)", len(events), err)
	}

	if _, err := f.m.History(0); !errors.Is(err, gallery.ErrInvalidArgument) {
		t.Errorf("History(0) error = %v, want ErrInvalidArgument", err)
	}

	noJournal := gallery.NewRepoManager(testutil.NewMockFilesystemManager(), "/repos", nil, nil, nil, nil, nil, nil)
	if events, err := noJournal.History(5); err != nil || events != nil {
		t.Errorf("History without journal = (%v, %v)", events, err)
	}
}
