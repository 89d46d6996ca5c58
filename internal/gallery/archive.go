package gallery

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// encryptedSuffix marks archived objects written through the Encryptor.
const encryptedSuffix = ".age"

// ArchiveEntry copies every image of ref into the vault, encrypting it first
// when an Encryptor is configured. Returns the number of images archived.
func (m *RepoManager) ArchiveEntry(ref PromptDirectoryRef) (int, error) {
	if m.vault == nil {
		return 0, fmt.Errorf("no archive vault configured")
	}
	if err := m.requireRepo(); err != nil {
		return 0, err
	}
	if err := ValidateRef(ref); err != nil {
		return 0, err
	}

	entry, err := m.resolveEntry(ref)
	if err != nil {
		return 0, fmt.Errorf("reading entry: %w", err)
	}

	for _, imagePath := range entry.ImagePaths {
		key := path.Join(archivePrefix(entry.PromptDirectoryRef), filepath.Base(imagePath))
		data, err := m.readFile(imagePath)
		if err != nil {
			return 0, err
		}

		if m.encryptor != nil {
			var buf bytes.Buffer
			if err := m.encryptor.Encrypt(bytes.NewReader(data), &buf); err != nil {
				return 0, fmt.Errorf("encrypting %s: %w", imagePath, err)
			}
			data = buf.Bytes()
			key += encryptedSuffix
		}

		if err := m.vault.Put(key, bytes.NewReader(data), int64(len(data))); err != nil {
			return 0, fmt.Errorf("archiving %s: %w", imagePath, err)
		}
		m.logger.Debug("image archived", "key", key)
	}

	m.logger.Info("entry archived", "entry", entry.String(), "images", entry.Num())
	m.record(EventArchive, entry.PromptDirectoryRef, fmt.Sprintf("%d images", entry.Num()))
	return entry.Num(), nil
}

// IsArchiveEncrypted reports whether any archived image of ref needs a
// DecryptionContext to be restored.
func (m *RepoManager) IsArchiveEncrypted(ref PromptDirectoryRef) (bool, error) {
	keys, err := m.archivedKeys(ref)
	if err != nil {
		return false, err
	}
	for _, key := range keys {
		if strings.HasSuffix(key, encryptedSuffix) {
			return true, nil
		}
	}
	return false, nil
}

// RestoreEntry writes the archived images of ref back into its entry folder,
// recreating the folder when needed. dc may be nil when nothing is encrypted.
// Returns the number of images restored.
func (m *RepoManager) RestoreEntry(ref PromptDirectoryRef, dc DecryptionContext) (int, error) {
	keys, err := m.archivedKeys(ref)
	if err != nil {
		return 0, err
	}

	dir := m.entryPath(ref)
	if err := m.fsys.MkdirAll(dir); err != nil {
		return 0, fmt.Errorf("creating entry directory: %w", err)
	}

	for _, key := range keys {
		name := path.Base(key)
		var buf bytes.Buffer
		if err := m.vault.Get(key, &buf); err != nil {
			return 0, fmt.Errorf("fetching %s: %w", key, err)
		}

		var content io.Reader = &buf
		if strings.HasSuffix(name, encryptedSuffix) {
			if dc == nil {
				return 0, fmt.Errorf("%s is encrypted and no decryption context was given", key)
			}
			var plain bytes.Buffer
			if err := dc.Decrypt(&buf, &plain); err != nil {
				return 0, fmt.Errorf("decrypting %s: %w", key, err)
			}
			content = &plain
			name = strings.TrimSuffix(name, encryptedSuffix)
		}

		if _, err := m.fsys.WriteFile(filepath.Join(dir, name), content); err != nil {
			return 0, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	ref.Repo = m.repo
	m.logger.Info("entry restored", "entry", ref.String(), "images", len(keys))
	m.record(EventRestore, ref, fmt.Sprintf("%d images", len(keys)))
	return len(keys), nil
}

// archivedKeys lists the vault objects of ref. An entry with no archived
// objects is ErrNotFound.
func (m *RepoManager) archivedKeys(ref PromptDirectoryRef) ([]string, error) {
	if m.vault == nil {
		return nil, fmt.Errorf("no archive vault configured")
	}
	if err := m.requireRepo(); err != nil {
		return nil, err
	}
	if err := ValidateRef(ref); err != nil {
		return nil, err
	}

	ref.Repo = m.repo
	prefix := archivePrefix(ref) + "/"
	all, err := m.vault.List(prefix)
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}

	var keys []string
	for _, key := range all {
		name := strings.TrimPrefix(key, prefix)
		if name == "" || strings.Contains(name, "/") || name == "." || name == ".." {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no archive for %s", ErrNotFound, ref.String())
	}
	return keys, nil
}

func (m *RepoManager) readFile(p string) ([]byte, error) {
	f, err := m.fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", p, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

// archivePrefix is the vault key prefix of an entry.
func archivePrefix(ref PromptDirectoryRef) string {
	return path.Join(ref.Repo, ref.Date, ref.EntryName())
}
