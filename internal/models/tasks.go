package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// JobState is the state label CRAB reports for a single job
type JobState string

const (
	JobStateIdle         JobState = "idle"
	JobStateUnsubmitted  JobState = "unsubmitted"
	JobStateCooloff      JobState = "cooloff"
	JobStateRunning      JobState = "running"
	JobStateTransferring JobState = "transferring"
	JobStateFailed       JobState = "failed"
	JobStateFinished     JobState = "finished"
)

// JobID identifies a job inside a task. CRAB reports it either as a
// string ("1", "2-1") or as a bare number depending on the client version.
type JobID string

func (id *JobID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid job id %s: %w", data, err)
		}
		*id = JobID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid job id %s: %w", data, err)
	}
	*id = JobID(n.String())
	return nil
}

type JobRecord struct {
	JobID JobID    `json:"jobid"`
	State JobState `json:"state"`
}

// StatusResponse is what the job manager returns for a status query
type StatusResponse struct {
	JobsPerStatus map[JobState]int `json:"jobsPerStatus"`
	JobList       []JobRecord      `json:"jobList"`
}

type SubmitResponse struct {
	RequestName string `json:"requestName"`
	TaskName    string `json:"taskName,omitempty"`
}

// Task is a submitted CRAB task. It is never modified after submission.
type Task struct {
	Dataset     string
	RequestName string
	Handle      string
	Config      TaskConfig
}

// StatusSnapshot is a point-in-time read of the jobs of a task
type StatusSnapshot struct {
	Counts map[JobState]int
	Jobs   []JobRecord
}

// NewStatusSnapshot copies the response so that later decoding into the
// same response value cannot change an already logged snapshot.
func NewStatusSnapshot(resp *StatusResponse) StatusSnapshot {
	snapshot := StatusSnapshot{
		Counts: make(map[JobState]int),
	}
	if resp == nil {
		return snapshot
	}

	for state, count := range resp.JobsPerStatus {
		snapshot.Counts[state] = count
	}
	snapshot.Jobs = append([]JobRecord(nil), resp.JobList...)
	return snapshot
}

// Total returns the number of jobs over all status labels
func (s StatusSnapshot) Total() int {
	total := 0
	for _, count := range s.Counts {
		total += count
	}
	return total
}

func (s StatusSnapshot) Finished() int {
	return s.Counts[JobStateFinished]
}

// Done reports whether every job of the task has finished. A snapshot with
// no jobs is not done: the job manager has not enumerated the jobs yet.
func (s StatusSnapshot) Done() bool {
	total := s.Total()
	return total > 0 && s.Finished() >= total
}

// States returns the status labels present in the snapshot in a stable order
func (s StatusSnapshot) States() []JobState {
	states := make([]JobState, 0, len(s.Counts))
	for state := range s.Counts {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}
