package room

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"switchboard/internal/logging"
)

// Registry is the startup-loaded room table. It is never mutated after Load;
// lookups are safe for concurrent use without locking.
type Registry struct {
	rooms     map[string]Room
	order     []string
	defaultID string
	logger    *logging.Logger
}

type registryFile struct {
	Default string `yaml:"default"`
	Rooms   []Room `yaml:"rooms"`
}

// Load decodes the embedded defaults and, when path names an existing file,
// replaces them with the user's registry. The file must define at least one
// room and a known default id.
func Load(defaults []byte, path string, logger *logging.Logger) (*Registry, error) {
	payload := defaults
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read rooms file: %w", err)
			}
		} else {
			payload = data
		}
	}

	var file registryFile
	if err := yaml.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("decode rooms file: %w", err)
	}
	if len(file.Rooms) == 0 {
		return nil, fmt.Errorf("rooms file defines no rooms")
	}

	rooms := make(map[string]Room, len(file.Rooms))
	order := make([]string, 0, len(file.Rooms))
	for _, entry := range file.Rooms {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("room with empty id")
		}
		if _, exists := rooms[id]; exists {
			return nil, fmt.Errorf("duplicate room id %q", id)
		}
		transport, ok := ParseTransport(string(entry.Transport))
		if !ok {
			return nil, fmt.Errorf("room %q: unknown transport %q", id, entry.Transport)
		}
		entry.ID = id
		entry.Transport = transport
		if strings.TrimSpace(entry.Label) == "" {
			entry.Label = id
		}
		if strings.TrimSpace(entry.MatchHint) == "" {
			entry.MatchHint = id
		}
		rooms[id] = entry
		order = append(order, id)
	}

	defaultID := strings.TrimSpace(file.Default)
	if defaultID == "" {
		defaultID = order[0]
	}
	if _, ok := rooms[defaultID]; !ok {
		return nil, fmt.Errorf("default room %q is not registered", defaultID)
	}

	return &Registry{
		rooms:     rooms,
		order:     order,
		defaultID: defaultID,
		logger:    logger,
	}, nil
}

// Resolve returns the registered room for id, or the default room when id is
// unknown. It never fails; the substitution is logged as a warning.
func (r *Registry) Resolve(id string) Room {
	trimmed := strings.TrimSpace(id)
	if room, ok := r.rooms[trimmed]; ok {
		return room
	}
	if r.logger != nil {
		r.logger.Warn("unknown room, using default", map[string]string{
			"room":    trimmed,
			"default": r.defaultID,
		})
	}
	return r.rooms[r.defaultID]
}

// Lookup reports whether id is registered, without default substitution.
func (r *Registry) Lookup(id string) (Room, bool) {
	room, ok := r.rooms[strings.TrimSpace(id)]
	return room, ok
}

func (r *Registry) DefaultID() string {
	return r.defaultID
}

// List returns the registered rooms in file order.
func (r *Registry) List() []Room {
	out := make([]Room, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rooms[id])
	}
	return out
}

// IDs returns the registered room ids sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
