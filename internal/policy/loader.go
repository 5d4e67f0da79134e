package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// FileSystem abstracts file reads for testability.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// osFileSystem implements FileSystem using the real OS.
type osFileSystem struct{}

func (osFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader reads the policy file with injected dependencies.
type Loader struct {
	fs FileSystem
}

// NewLoader creates a production Loader using the real filesystem.
func NewLoader() *Loader {
	return &Loader{fs: osFileSystem{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing).
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// rawPolicy holds the on-disk sections as raw bodies so a section of the
// wrong shape reads as absent rather than failing the whole file. Only an
// unreadable or non-JSON file is an error.
type rawPolicy struct {
	Defaults  json.RawMessage `json:"defaults"`
	Profiles  json.RawMessage `json:"profiles"`
	Caps      json.RawMessage `json:"caps"`
	Recursion json.RawMessage `json:"recursion"`
}

// Load reads the policy file at path and merges it over the built-in
// default policy. A missing file yields the built-in default. Malformed
// sections inside an otherwise valid file fall back to defaults.
func (l *Loader) Load(path string) (*Policy, error) {
	pol := Default()

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pol, nil
		}
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	var raw rawPolicy
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	var defaults map[string]any
	if decodeSection(raw.Defaults, &defaults) && defaults != nil {
		pol.Defaults = mergeProfile(pol.Defaults, defaults)
		pol.Defaults = normalize(pol.Defaults, Default().Defaults)
	}

	var profiles map[string]any
	if decodeSection(raw.Profiles, &profiles) {
		for key, value := range profiles {
			depth, err := strconv.Atoi(key)
			fragment, ok := value.(map[string]any)
			if err != nil || depth < 0 || !ok {
				continue
			}
			if pol.Profiles == nil {
				pol.Profiles = make(map[int]map[string]any, len(profiles))
			}
			pol.Profiles[depth] = fragment
		}
	}

	var caps map[string]any
	if decodeSection(raw.Caps, &caps) {
		for key, value := range caps {
			depth, err := strconv.Atoi(key)
			if err != nil || depth < 0 {
				continue
			}
			cap, ok := decodeCap(value)
			if !ok {
				continue
			}
			if pol.Caps == nil {
				pol.Caps = make(map[int]Cap, len(caps))
			}
			pol.Caps[depth] = cap
		}
	}

	var recursion map[string]any
	if decodeSection(raw.Recursion, &recursion) && recursion != nil {
		var rec RecursionPolicy
		if decodeLoose(recursion, &rec) && rec.MaxDepth >= 0 {
			pol.Recursion = rec
		}
	}

	return pol, nil
}

// decodeSection unmarshals a raw section body into out. Absent sections
// and bodies of the wrong shape report false, so callers treat them as
// missing.
func decodeSection(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// decodeCap coerces a loosely typed cap entry. Non-structured entries are
// rejected so a malformed cap never clamps anything by accident.
func decodeCap(value any) (Cap, bool) {
	entry, ok := value.(map[string]any)
	if !ok {
		return Cap{}, false
	}
	var cap Cap
	if !decodeLoose(entry, &cap) {
		return Cap{}, false
	}
	allowed := cap.History[:0]
	for _, m := range cap.History {
		if m.Valid() {
			allowed = append(allowed, m)
		}
	}
	cap.History = allowed
	return cap, true
}

func decodeLoose(in map[string]any, out any) bool {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return false
	}
	return dec.Decode(in) == nil
}

// Load is a convenience function using the default loader.
func Load(path string) (*Policy, error) {
	return NewLoader().Load(path)
}
