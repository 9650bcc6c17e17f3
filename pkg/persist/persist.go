package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/td0m/remind/pkg/task"
)

// ErrUnavailable means the backing medium could not be read or written.
// A missing file is not unavailable: that is just the first run.
var ErrUnavailable = errors.New("storage unavailable")

type Persistor interface {
	Save(*task.Store) error
	Load() (*task.Store, error)
}

type JSON struct {
	file string
}

func InJSON(file string) *JSON {
	return &JSON{file}
}

// Save writes the whole user → tasks mapping to the json file
func (j JSON) Save(s *task.Store) error {
	bs, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(j.file, bs, 0660); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrUnavailable, j.file, err)
	}
	return nil
}

// Load reads the mapping back. An absent file yields an empty store;
// a file that exists but cannot be read or parsed is an error, since
// assuming empty state would silently drop everyone's tasks.
func (j JSON) Load() (*task.Store, error) {
	bs, err := os.ReadFile(j.file)
	if errors.Is(err, os.ErrNotExist) {
		return task.NewStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, j.file, err)
	}
	s := task.NewStore()
	if err := json.Unmarshal(bs, s); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrUnavailable, j.file, err)
	}
	return s, nil
}
