package task

import (
	"encoding/json"
)

// Store is the full user → task list mapping. Lists keep insertion
// order, which is the only stable way tasks are addressed by index.
type Store struct {
	users map[string][]Task
}

func NewStore() *Store {
	return &Store{users: map[string][]Task{}}
}

// Tasks returns a copy of a user's list. An unknown user simply has no
// tasks.
func (s *Store) Tasks(user string) []Task {
	tasks := make([]Task, len(s.users[user]))
	copy(tasks, s.users[user])
	return tasks
}

// Replace overwrites a user's whole list. An empty list removes the
// user entirely, so users with no tasks never linger in the mapping.
func (s *Store) Replace(user string, tasks []Task) {
	if len(tasks) == 0 {
		delete(s.users, user)
		return
	}
	s.users[user] = tasks
}

// Append adds a task to the end of a user's list
func (s *Store) Append(user string, t Task) {
	s.users[user] = append(s.users[user], t)
}

// Users returns how many users currently have tasks
func (s *Store) Users() int {
	return len(s.users)
}

// Has reports whether a user currently has any tasks
func (s *Store) Has(user string) bool {
	_, ok := s.users[user]
	return ok
}

// the mapping serialises as-is: user id → list of tasks
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.users)
}

func (s *Store) UnmarshalJSON(bs []byte) error {
	var out map[string][]Task
	if err := json.Unmarshal(bs, &out); err != nil {
		return err
	}
	if out == nil {
		out = map[string][]Task{}
	}
	s.users = out
	return nil
}
