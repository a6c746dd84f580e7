package models

import (
	"encoding/json"
	"testing"
)

func TestStatusSnapshot_TotalIsSumOfCounts(t *testing.T) {
	s := NewStatusSnapshot(&StatusResponse{
		JobsPerStatus: map[JobState]int{
			JobStateRunning:  3,
			JobStateFinished: 4,
			JobStateFailed:   1,
			"transferred":    2,
		},
	})

	if got := s.Total(); got != 10 {
		t.Fatalf("Total()=%d, want 10", got)
	}
	if got := s.Finished(); got != 4 {
		t.Fatalf("Finished()=%d, want 4", got)
	}
	if s.Done() {
		t.Fatalf("Done()=true, want false")
	}
}

func TestStatusSnapshot_Done(t *testing.T) {
	tests := []struct {
		name   string
		counts map[JobState]int
		want   bool
	}{
		{name: "no jobs yet", counts: nil, want: false},
		{name: "none finished", counts: map[JobState]int{JobStateIdle: 5}, want: false},
		{name: "missing finished label", counts: map[JobState]int{JobStateRunning: 1}, want: false},
		{name: "partially finished", counts: map[JobState]int{JobStateFinished: 4, JobStateRunning: 1}, want: false},
		{name: "all finished", counts: map[JobState]int{JobStateFinished: 5}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStatusSnapshot(&StatusResponse{JobsPerStatus: tt.counts})
			if got := s.Done(); got != tt.want {
				t.Fatalf("Done()=%v, want %v (finished=%d total=%d)", got, tt.want, s.Finished(), s.Total())
			}
		})
	}
}

func TestNewStatusSnapshot_CopiesResponse(t *testing.T) {
	resp := &StatusResponse{
		JobsPerStatus: map[JobState]int{JobStateRunning: 1},
		JobList:       []JobRecord{{JobID: "1", State: JobStateRunning}},
	}
	s := NewStatusSnapshot(resp)

	resp.JobsPerStatus[JobStateRunning] = 7
	resp.JobList[0].State = JobStateFinished

	if s.Counts[JobStateRunning] != 1 {
		t.Fatalf("snapshot counts changed with response: %v", s.Counts)
	}
	if s.Jobs[0].State != JobStateRunning {
		t.Fatalf("snapshot jobs changed with response: %v", s.Jobs)
	}
}

func TestNewStatusSnapshot_Nil(t *testing.T) {
	s := NewStatusSnapshot(nil)
	if s.Total() != 0 || len(s.Jobs) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", s)
	}
}

func TestStatusResponse_DecodesStringAndNumericJobIDs(t *testing.T) {
	body := `{
		"jobsPerStatus": {"finished": 1, "running": 2},
		"jobList": [
			{"jobid": "1", "state": "finished"},
			{"jobid": 2, "state": "running"},
			{"jobid": "3-1", "state": "running"}
		]
	}`

	var resp StatusResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []JobID{"1", "2", "3-1"}
	if len(resp.JobList) != len(want) {
		t.Fatalf("got %d jobs, want %d", len(resp.JobList), len(want))
	}
	for i, id := range want {
		if resp.JobList[i].JobID != id {
			t.Fatalf("job %d id=%q, want %q", i, resp.JobList[i].JobID, id)
		}
	}
}

func TestJobID_RejectsObjects(t *testing.T) {
	var id JobID
	if err := json.Unmarshal([]byte(`{"id":1}`), &id); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStatusSnapshot_StatesSorted(t *testing.T) {
	s := NewStatusSnapshot(&StatusResponse{JobsPerStatus: map[JobState]int{
		JobStateRunning: 1, JobStateFailed: 1, JobStateFinished: 1,
	}})
	got := s.States()
	want := []JobState{JobStateFailed, JobStateFinished, JobStateRunning}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("States()=%v, want %v", got, want)
		}
	}
}
