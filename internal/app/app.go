package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"paiid/internal/config"
	"paiid/internal/database"
	"paiid/internal/encryption"
	"paiid/internal/fs"
	"paiid/internal/gallery"
	"paiid/internal/provider"
	"paiid/internal/vault"
)

// PaiidApp is the application layer between the CLI and RepoManager.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw strings from the command line, and releases resources on Close.
type PaiidApp struct {
	cfg       *config.Config
	fsmgr     gallery.FilesystemManager
	journal   gallery.Journal
	vault     gallery.Vault
	encryptor gallery.Encryptor
	manager   *gallery.RepoManager
	op        *Operation
	logger    gallery.Logger
	logFile   *os.File
}

// NewPaiidApp creates a fully wired PaiidApp from the given config.
// operation identifies the CLI command being run (e.g. "Page", "Archive").
// The default repo, when configured, is selected. The caller must call Close when done.
func NewPaiidApp(cfg *config.Config, operation string) (*PaiidApp, error) {
	if err := cfg.Resolve(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	level, err := ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	clock := gallery.RealClock{}
	idgen := gallery.UUIDGenerator{}
	op := NewOperation(operation, "", clock, idgen)

	slogger, logFile, err := newLogger(cfg.LogDir, op.ID, level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	a := &PaiidApp{
		cfg:     cfg,
		fsmgr:   fs.NewOSFilesystemManager(cfg.Filesystem.Ignore),
		op:      op,
		logger:  logger,
		logFile: logFile,
	}

	if a.journal, err = database.NewJournalFromConfig(cfg.Journal, op.ID); err != nil {
		a.Close()
		return nil, fmt.Errorf("creating journal: %w", err)
	}
	if a.vault, err = vault.NewVaultFromConfig(cfg.Archive); err != nil {
		a.Close()
		return nil, fmt.Errorf("creating archive vault: %w", err)
	}
	if a.encryptor, err = encryption.NewEncryptorFromConfig(cfg.Encryption); err != nil {
		a.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	if err := a.fsmgr.MkdirAll(cfg.ReposRoot); err != nil {
		a.Close()
		return nil, fmt.Errorf("creating repos root: %w", err)
	}

	a.manager = gallery.NewRepoManager(a.fsmgr, cfg.ReposRoot, a.journal, a.vault, a.encryptor, logger, clock, idgen)
	if cfg.DefaultRepo != "" {
		if err := a.manager.SwitchRepo(cfg.DefaultRepo); err != nil {
			a.Close()
			return nil, fmt.Errorf("selecting default repo: %w", err)
		}
	}

	logger.Debug("operation started", "operation", operation)
	return a, nil
}

// ListRepos returns the names of all repos, ascending.
func (a *PaiidApp) ListRepos() ([]string, error) {
	return a.manager.ListRepos()
}

// CurrentRepo returns the selected repo, or "" if none.
func (a *PaiidApp) CurrentRepo() string {
	return a.manager.CurrentRepo()
}

// SwitchRepo selects name, creating it when needed.
func (a *PaiidApp) SwitchRepo(name string) error {
	return a.manager.SwitchRepo(name)
}

// Generate stores the images at imagePaths as a new entry for prompt.
func (a *PaiidApp) Generate(ctx context.Context, prompt string, imagePaths []string) (*gallery.Entry, error) {
	return a.manager.SaveImage(ctx, prompt, provider.NewFileProvider(imagePaths...))
}

// Page returns one page of entries. count < 1 means the configured page
// size; token is the encoded NextToken of a previous page or "".
func (a *PaiidApp) Page(count int, token string, direction string) (*gallery.GetImagePromptsResult, error) {
	dir, err := gallery.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	var next *gallery.NextToken
	if token != "" {
		if next, err = gallery.DecodeToken(token); err != nil {
			return nil, err
		}
	}

	if count < 1 {
		count = a.cfg.PageSize
	}
	return a.manager.GetImages(count, next, dir), nil
}

// Latest returns the newest entry of the selected repo.
func (a *PaiidApp) Latest() (*gallery.Entry, bool) {
	return a.manager.GetLatestEntry()
}

// Delete removes the entry named by rawRef and returns the number of images removed.
func (a *PaiidApp) Delete(rawRef string) (int, error) {
	ref, err := ParseRef(rawRef)
	if err != nil {
		return 0, err
	}
	return a.manager.DeleteEntry(ref)
}

// Archive copies the entry named by rawRef into the archive vault.
func (a *PaiidApp) Archive(rawRef string) (int, error) {
	ref, err := ParseRef(rawRef)
	if err != nil {
		return 0, err
	}
	if a.encryptor != nil && !a.encryptor.IsConfigured() {
		return 0, fmt.Errorf("encryption keys not set up: run 'paiid keys init' first")
	}
	return a.manager.ArchiveEntry(ref)
}

// ArchiveEncrypted reports whether restoring rawRef needs a passphrase.
func (a *PaiidApp) ArchiveEncrypted(rawRef string) (bool, error) {
	ref, err := ParseRef(rawRef)
	if err != nil {
		return false, err
	}
	return a.manager.IsArchiveEncrypted(ref)
}

// Restore writes the archived images of rawRef back into the repo.
// passphrase is only used when the archive is encrypted.
func (a *PaiidApp) Restore(rawRef string, passphrase string) (int, error) {
	ref, err := ParseRef(rawRef)
	if err != nil {
		return 0, err
	}

	encrypted, err := a.manager.IsArchiveEncrypted(ref)
	if err != nil {
		return 0, err
	}

	var dc gallery.DecryptionContext
	if encrypted {
		if a.encryptor == nil {
			return 0, fmt.Errorf("archive is encrypted but encryption is disabled in config")
		}
		if dc, err = a.encryptor.Unlock(passphrase); err != nil {
			return 0, fmt.Errorf("unlocking private key: %w", err)
		}
	}
	return a.manager.RestoreEntry(ref, dc)
}

// History returns the most recent journal events.
func (a *PaiidApp) History(limit int) ([]*gallery.Event, error) {
	return a.manager.History(limit)
}

// SetupKeys generates the archive encryption key pair.
func (a *PaiidApp) SetupKeys(passphrase string) error {
	if a.encryptor == nil {
		return fmt.Errorf("encryption is disabled in config")
	}
	return a.encryptor.Setup(passphrase)
}

// Fail marks the operation as failed; Close logs it with status "error".
func (a *PaiidApp) Fail() {
	a.op.Fail()
}

// Close finalizes the operation and closes all resources.
func (a *PaiidApp) Close() error {
	var firstErr error

	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			firstErr = fmt.Errorf("closing journal: %w", err)
		}
	}

	a.logger.Debug("operation finished", "operation", a.op.Name, "status", a.op.Status)
	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// ParseRef accepts either an encoded reference as printed by the page command
// or a repo-relative entry path "<date>/<time>_<prompt>".
func ParseRef(raw string) (gallery.PromptDirectoryRef, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "/") {
		return gallery.ParseEntryPath(raw)
	}
	return gallery.DecodeRef(raw)
}
