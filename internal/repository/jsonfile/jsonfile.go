// Package jsonfile implements the repository interfaces on top of flat JSON
// documents in a single directory:
//
//	users.json      array of model.User
//	tasks.json      array of model.Task
//	sequences.json  last id handed out per collection
//
// The whole data set lives in memory. Every mutation rewrites all documents
// while still holding the store lock, so the files on disk always reflect the
// most recently committed in-memory state and writes land in commit order.
//
// Each document is replaced atomically (temp file + rename), but the set of
// documents is not: a crash between two renames can leave users.json and
// tasks.json from different generations.
//
// Ids come from sequences.json and are never reused. When that file is
// missing or unreadable the counters are rebuilt from the highest stored
// ids. If sequences.json is lost together with a corrupt users.json or
// tasks.json, nothing on disk remembers the old ids and numbering restarts
// from 1; keep sequences.json in backups alongside the data.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/sakif/todo-app/internal/model"
)

const (
	UsersFile     = "users.json"
	TasksFile     = "tasks.json"
	SequencesFile = "sequences.json"
)

// sequences records the last id assigned per collection. Ids are never
// derived from collection length, so deleting records never leads to reuse.
type sequences struct {
	Users int64 `json:"users"`
	Tasks int64 `json:"tasks"`
}

// Store is the JSON-file backed implementation of repository.Store.
type Store struct {
	dir    string
	logger *slog.Logger

	// mu guards every field below and is held across persistence.
	mu    sync.Mutex
	users []model.User
	tasks []model.Task
	seq   sequences
}

// Open prepares dir and loads whatever it holds. An error is returned only
// when the directory or its documents cannot be created at all.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		dir:    dir,
		logger: logger,
		users:  []model.User{},
		tasks:  []model.Task{},
	}

	if err := s.Initialize(); err != nil {
		return nil, err
	}
	s.Load()

	return s, nil
}

// Initialize creates the storage directory and seeds any missing user or
// task document with an empty array. Existing documents are left alone, so
// calling it on every startup is safe.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("jsonfile: creating data dir %s: %w", s.dir, err)
	}

	for _, name := range []string{UsersFile, TasksFile} {
		path := filepath.Join(s.dir, name)
		_, err := os.Stat(path)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("jsonfile: checking %s: %w", path, err)
		}
		if err := s.writeDocument(name, []struct{}{}); err != nil {
			return fmt.Errorf("jsonfile: seeding %s: %w", path, err)
		}
	}

	return nil
}

// Load replaces the in-memory state with the contents of the documents.
//
// If either the user or the task document cannot be read or parsed, both
// collections are reset to empty and the empty state is written back. The
// unreadable data is discarded, but the id counters are kept: they never go
// below the values in sequences.json or in memory, so tokens issued before
// the reset can never name a newly registered account.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []model.User
	var tasks []model.Task

	// Counters only ever move forward: start from whatever is already in
	// memory and raise it to the persisted values.
	seq := s.seq
	var persisted sequences
	if err := s.readDocument(SequencesFile, &persisted); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("jsonfile: unreadable sequences, deriving from data",
				slog.String("error", err.Error()),
			)
		}
	} else {
		seq.Users = max(seq.Users, persisted.Users)
		seq.Tasks = max(seq.Tasks, persisted.Tasks)
	}

	errUsers := s.readDocument(UsersFile, &users)
	errTasks := s.readDocument(TasksFile, &tasks)

	// Whatever did decode still counts, even if the other document is lost.
	for _, u := range users {
		seq.Users = max(seq.Users, u.ID)
	}
	for _, t := range tasks {
		seq.Tasks = max(seq.Tasks, t.ID)
	}

	if err := errors.Join(errUsers, errTasks); err != nil {
		s.logger.Warn("jsonfile: unreadable data, resetting to empty",
			slog.String("dir", s.dir),
			slog.String("error", err.Error()),
		)
		s.users = []model.User{}
		s.tasks = []model.Task{}
		s.seq = seq
		s.save()
		return
	}

	if users == nil {
		users = []model.User{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	s.users = users
	s.tasks = tasks

	s.seq = seq

	s.logger.Debug("jsonfile: loaded",
		slog.String("dir", s.dir),
		slog.Int("users", len(s.users)),
		slog.Int("tasks", len(s.tasks)),
	)
}

// Save writes the complete in-memory state to disk.
func (s *Store) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save()
}

// Close is a no-op; no file handles stay open between operations.
func (s *Store) Close() error {
	return nil
}

// save rewrites users, tasks and sequences in that order. Failures are
// logged and not returned: the in-memory state stays authoritative for the
// lifetime of the process. Callers must hold s.mu.
func (s *Store) save() {
	docs := []struct {
		name string
		v    any
	}{
		{UsersFile, s.users},
		{TasksFile, s.tasks},
		{SequencesFile, s.seq},
	}
	for _, d := range docs {
		if err := s.writeDocument(d.name, d.v); err != nil {
			s.logger.Error("jsonfile: saving document",
				slog.String("file", d.name),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *Store) readDocument(name string, dst any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%s is empty", name)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// writeDocument replaces name with the indented JSON encoding of v. The
// data is written to a temp file in the same directory, synced and renamed
// over the target.
func (s *Store) writeDocument(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpName, filepath.Join(s.dir, name))
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
