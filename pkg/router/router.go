// Package router defines device profiles and assembles metrics snapshots.
// A profile knows one router model's commands and output layouts; adding
// support for a model means adding a profile, not touching the dispatch.
package router

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/rtstat-tools/rtstat/pkg/session"
	"github.com/rtstat-tools/rtstat/pkg/util"
)

// Metrics is one named group of typed fields in a snapshot. Values are
// strings, integers, or nested Metrics (e.g. per-interface counters).
type Metrics map[string]interface{}

// Profile executes read-only queries against an open session and maps the
// parsed output into metric groups. Implementations are stateless; one
// exists per supported router model.
type Profile interface {
	// Name is the router's display name, e.g. "Thomson TG585 v8".
	Name() string

	// DefaultUsername and DefaultPassword are the factory credentials
	// used when the caller supplies none.
	DefaultUsername() string
	DefaultPassword() string

	// AllInfo runs every query the profile knows and merges the result
	// groups. Each query contributes a uniquely named group.
	AllInfo(s *session.Session) (map[string]Metrics, error)
}

var profiles = map[string]func() Profile{}

// Register adds a profile constructor under a model identifier. Called
// from profile init functions.
func Register(model string, constructor func() Profile) {
	profiles[model] = constructor
}

// New returns the profile registered for model.
func New(model string) (Profile, error) {
	constructor, ok := profiles[model]
	if !ok {
		return nil, fmt.Errorf("unknown router model %q (known: %v)", model, Models())
	}
	return constructor(), nil
}

// Models lists the registered model identifiers, sorted.
func Models() []string {
	models := make([]string, 0, len(profiles))
	for m := range profiles {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}

// Snapshot is the result of one poll. Marshals to the JSON shape external
// monitoring consumes: keys sorted, so fields are declared in sorted order.
type Snapshot struct {
	Data      map[string]Metrics `json:"data"`
	Router    string             `json:"router"`
	Timestamp float64            `json:"timestamp"`
}

// JSON renders the snapshot pretty-printed with 4-space indentation.
func (s *Snapshot) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "    ")
}

// Poll runs one full measurement cycle over an established transport:
// login, query everything the profile knows, log out. Either a complete
// snapshot is returned or an error; never a partial one. The transport is
// released on every path.
func Poll(t session.Transport, p Profile, username, password string) (*Snapshot, error) {
	if username == "" {
		username = p.DefaultUsername()
	}
	if password == "" {
		password = p.DefaultPassword()
	}

	log := util.WithRouter(p.Name())
	log.Debug("opening session")

	s, err := session.Open(t, username, password)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	data, err := p.AllInfo(s)
	if err != nil {
		return nil, err
	}
	log.Debugf("collected %d metric group(s)", len(data))

	return &Snapshot{
		Router:    p.Name(),
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Data:      data,
	}, nil
}
