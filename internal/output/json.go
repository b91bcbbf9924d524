package output

import (
	"encoding/json"
	"io"

	"github.com/vulnverified/hostprobe/internal/engine"
)

type jsonReport struct {
	*engine.RunResult
	Artifacts Artifacts `json:"artifacts"`
}

// WriteJSON writes the run result, together with the locations of the
// files it was saved to, as indented JSON to w.
func WriteJSON(w io.Writer, result *engine.RunResult, files Artifacts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{RunResult: result, Artifacts: files})
}
