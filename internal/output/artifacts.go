package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vulnverified/hostprobe/internal/engine"
)

// Artifacts names the files a run produces. An empty DeadPath skips the
// dead-hosts file.
type Artifacts struct {
	LivePath string `json:"live"`
	RawPath  string `json:"raw"`
	DeadPath string `json:"dead,omitempty"`
}

// WriteArtifacts writes the live hosts, the raw probe transcript and the
// dead hosts. Every file is replaced atomically, so a failed run never
// leaves a half-written file behind.
func WriteArtifacts(a Artifacts, result *engine.RunResult) error {
	if err := writeAtomic(a.LivePath, hostLines(result.LiveHosts)); err != nil {
		return fmt.Errorf("writing live hosts: %w", err)
	}
	if err := writeAtomic(a.RawPath, result.RawTranscript); err != nil {
		return fmt.Errorf("writing probe transcript: %w", err)
	}
	if a.DeadPath != "" {
		if err := writeAtomic(a.DeadPath, hostLines(result.DeadHosts)); err != nil {
			return fmt.Errorf("writing dead hosts: %w", err)
		}
	}
	return nil
}

func hostLines(hosts []string) []byte {
	if len(hosts) == 0 {
		return nil
	}
	return []byte(strings.Join(hosts, "\n") + "\n")
}

// writeAtomic writes data to a temp file next to path and renames it into
// place. The temp file is removed on any failure.
func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
