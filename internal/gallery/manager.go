package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// RepoManager manages a collection of image repos stored under one root
// directory. Within a repo, entries are partitioned by date, then stored in a
// folder named by the time of generation and the prompt:
//
//	<reposRoot>/<repo>/2024-01-11/15:05:06.713451_Sad rat/1.png
//
// The folder names are the only index. Pagination walks them with a
// DirectoryIterator; nothing is cached between calls.
//
// A RepoManager is not safe for concurrent use.
type RepoManager struct {
	fsys      FilesystemManager
	reposRoot string
	repo      string
	journal   Journal
	vault     Vault
	encryptor Encryptor
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewRepoManager creates a RepoManager rooted at reposRoot. journal, vault and
// encryptor are optional. Call SwitchRepo before any entry operation.
func NewRepoManager(fsys FilesystemManager, reposRoot string, journal Journal, vault Vault, encryptor Encryptor, logger Logger, clock Clock, idgen IDGenerator) *RepoManager {
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	return &RepoManager{
		fsys:      fsys,
		reposRoot: reposRoot,
		journal:   journal,
		vault:     vault,
		encryptor: encryptor,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// SwitchRepo makes name the target of all later operations, creating the
// repo directory if needed. Tokens issued for the previous repo must not be
// reused; their Repo field is not checked. Only a switch away from another
// selected repo is journaled; the initial selection is not.
func (m *RepoManager) SwitchRepo(name string) error {
	if err := ValidateRepoName(name); err != nil {
		return err
	}
	if err := m.fsys.MkdirAll(filepath.Join(m.reposRoot, name)); err != nil {
		return fmt.Errorf("creating repo %s: %w", name, err)
	}
	previous := m.repo
	m.repo = name
	switch {
	case previous == "":
		m.logger.Debug("selected repo", "repo", name)
	case previous != name:
		m.logger.Info("switched repo", "repo", name, "previous", previous)
		m.record(EventSwitchRepo, PromptDirectoryRef{Repo: name}, previous)
	}
	return nil
}

// CurrentRepo returns the name of the selected repo, or "" if none.
func (m *RepoManager) CurrentRepo() string {
	return m.repo
}

// RepoPath returns the absolute path of the selected repo.
func (m *RepoManager) RepoPath() string {
	return filepath.Join(m.reposRoot, m.repo)
}

// ListRepos returns the names of all repos under the root, ascending.
func (m *RepoManager) ListRepos() ([]string, error) {
	names, err := listChildNamesAscending(m.fsys, m.reposRoot)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing repos: %w", err)
	}
	return names, nil
}

// GenerateEntry creates the folder for a new entry stamped with the current
// time and returns its reference and absolute path. The caller writes the
// image files into the returned path.
func (m *RepoManager) GenerateEntry(prompt string) (PromptDirectoryRef, string, error) {
	if err := m.requireRepo(); err != nil {
		return PromptDirectoryRef{}, "", err
	}
	if err := ValidatePrompt(prompt); err != nil {
		return PromptDirectoryRef{}, "", err
	}

	now := m.clock.Now()
	ref := PromptDirectoryRef{
		Repo:   m.repo,
		Date:   FormatDate(now),
		Time:   FormatTime(now),
		Prompt: prompt,
	}
	ref.Name = EntryName(ref.Time, ref.Prompt)
	path := m.entryPath(ref)
	if err := m.fsys.MkdirAll(path); err != nil {
		return PromptDirectoryRef{}, "", fmt.Errorf("creating entry directory: %w", err)
	}

	m.logger.Info("entry created", "date", ref.Date, "time", ref.Time, "prompt", prompt)
	m.record(EventGenerate, ref, "")
	return ref, path, nil
}

// SaveImage asks provider for images of prompt and stores them in a new entry
// as 1.png, 2.png, and so on.
func (m *RepoManager) SaveImage(ctx context.Context, prompt string, provider ImageProvider) (*Entry, error) {
	if err := ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	images, err := provider.GenerateImages(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating images: %w", err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("generating images: provider returned no images")
	}

	ref, path, err := m.GenerateEntry(prompt)
	if err != nil {
		return nil, err
	}

	entry := &Entry{PromptDirectoryRef: ref, Path: path}
	for i, img := range images {
		imagePath := filepath.Join(path, fmt.Sprintf("%d.png", i+1))
		if _, err := m.fsys.WriteFile(imagePath, bytes.NewReader(img)); err != nil {
			return entry, fmt.Errorf("writing image %d: %w", i+1, err)
		}
		entry.ImagePaths = append(entry.ImagePaths, imagePath)
	}

	m.logger.Debug("images saved", "entry", ref.String(), "count", len(images))
	return entry, nil
}

// DeleteEntry removes the entry folder and everything in it. It returns the
// number of image files removed, 0 if the entry did not exist.
func (m *RepoManager) DeleteEntry(ref PromptDirectoryRef) (int, error) {
	if err := m.requireRepo(); err != nil {
		return 0, err
	}
	if err := ValidateRef(ref); err != nil {
		return 0, err
	}

	entry, err := m.resolveEntry(ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading entry: %w", err)
	}

	if err := m.fsys.RemoveAll(entry.Path); err != nil {
		return 0, fmt.Errorf("removing entry: %w", err)
	}

	m.logger.Info("entry deleted", "entry", entry.String(), "images", entry.Num())
	m.record(EventDelete, entry.PromptDirectoryRef, fmt.Sprintf("%d images", entry.Num()))
	return entry.Num(), nil
}

// entryPath returns the absolute path of the folder for ref in the selected repo.
func (m *RepoManager) entryPath(ref PromptDirectoryRef) string {
	return filepath.Join(m.RepoPath(), ref.Date, ref.EntryName())
}

// resolveEntry lists the images of ref. A missing entry is ErrNotFound.
func (m *RepoManager) resolveEntry(ref PromptDirectoryRef) (*Entry, error) {
	path := m.entryPath(ref)
	names, err := listChildNamesAscending(m.fsys, path)
	if err != nil {
		return nil, err
	}

	ref.Repo = m.repo
	entry := &Entry{PromptDirectoryRef: ref, Path: path}
	for _, name := range names {
		entry.ImagePaths = append(entry.ImagePaths, filepath.Join(path, name))
	}
	return entry, nil
}

func (m *RepoManager) requireRepo() error {
	if m.repo == "" {
		return fmt.Errorf("no repo selected")
	}
	return nil
}

// record writes a journal event. Journal failures never fail the operation.
func (m *RepoManager) record(kind EventKind, ref PromptDirectoryRef, detail string) {
	if m.journal == nil {
		return
	}
	ev := &Event{
		ID:        m.idgen.New(),
		Kind:      kind,
		Ref:       ref,
		Detail:    detail,
		CreatedAt: m.clock.Now(),
	}
	if err := m.journal.Record(ev); err != nil {
		m.logger.Warn("journal record failed", "kind", string(kind), "error", err)
	}
}
