// Package fs provides file-based document stores and the failed-page
// ledger.
//
// Documents are laid out as <base>/<service>/<pageID>.<ext> with a sibling
// <pageID>.json metadata file, plus a top-level metadata.json run summary.
// All writes are atomic (temp file + rename) so a crashed run never leaves a
// half-written document behind.
package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/docdex"
)

// SummaryFile is the name of the top-level run summary file.
const SummaryFile = "metadata.json"

// store holds the layout logic shared by the raw and clean stores.
type store struct {
	base string
	ext  string
}

func (s store) docPath(service, pageID string) string {
	return filepath.Join(s.base, service, pageID+s.ext)
}

func (s store) metaPath(service, pageID string) string {
	return filepath.Join(s.base, service, pageID+".json")
}

func (s store) exists(service, pageID string) bool {
	_, err := os.Stat(s.docPath(service, pageID))
	return err == nil
}

func (s store) services() ([]string, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	services := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			services = append(services, entry.Name())
		}
	}
	sort.Strings(services)
	return services, nil
}

func (s store) serviceDocuments(service string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.base, service))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, s.ext) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, s.ext))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s store) totalCount() (int, error) {
	services, err := s.services()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, service := range services {
		ids, err := s.serviceDocuments(service)
		if err != nil {
			return 0, err
		}
		total += len(ids)
	}
	return total, nil
}

func (s store) writeSummary(summary *docdex.StoreSummary) error {
	return writeJSON(filepath.Join(s.base, SummaryFile), summary)
}

// writeFileAtomic writes data to path via a temp file and rename, creating
// parent directories as needed.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, append(data, '\n'))
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
