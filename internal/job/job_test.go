package job

import (
	"testing"

	"github.com/wyshell/wyshell/internal/plan"
)

func TestTrackAssignsIncreasingIDs(t *testing.T) {
	tr := New()
	j1 := tr.Track(&plan.Node{}, "sleep 10")
	j2 := tr.Track(&plan.Node{}, "ping host")

	if j1.ID != 1 || j2.ID != 2 {
		t.Fatalf("unexpected ids: %d, %d", j1.ID, j2.ID)
	}
}

func TestListReturnsJobsInIDOrder(t *testing.T) {
	tr := New()
	tr.Track(&plan.Node{}, "a")
	tr.Track(&plan.Node{}, "b")

	jobs := tr.List()
	if len(jobs) != 2 || jobs[0].Command != "a" || jobs[1].Command != "b" {
		t.Fatalf("unexpected list: %+v", jobs)
	}
}

func TestRemoveDropsJob(t *testing.T) {
	tr := New()
	j := tr.Track(&plan.Node{}, "a")
	tr.Remove(j.ID)

	if _, ok := tr.Get(j.ID); ok {
		t.Fatal("expected job to be removed")
	}
}

func TestReapOnlyCollectsFinishedJobs(t *testing.T) {
	tr := New()
	// A node with no launched process is never "alive" (Alive() is false
	// once handle is nil), so it is immediately reapable.
	tr.Track(&plan.Node{}, "finished")

	done := tr.Reap()
	if len(done) != 1 || done[0].Command != "finished" {
		t.Fatalf("unexpected reap result: %+v", done)
	}
	if len(tr.List()) != 0 {
		t.Fatal("expected tracker to be empty after reap")
	}
}
