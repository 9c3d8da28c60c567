package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
)

func TestComputeStats(t *testing.T) {
	saturday := time.Date(2024, 6, 8, 15, 0, 0, 0, time.UTC)
	lastMonday := testNow.AddDate(0, 0, -7)

	tasks := []*task.Task{
		fixtureTask(t, fixture{title: "open-overdue", category: "work", due: at(9, 0)}),
		fixtureTask(t, fixture{title: "in-progress", category: "work", status: task.StatusInProgress}),
		fixtureTask(t, fixture{title: "done-saturday", status: task.StatusDone, updated: saturday}),
		fixtureTask(t, fixture{title: "done-just-now", status: task.StatusDone, updated: testNow}),
		fixtureTask(t, fixture{title: "done-too-old", status: task.StatusDone, updated: lastMonday}),
		fixtureTask(t, fixture{title: "done-past-due", status: task.StatusDone, due: at(9, 0), updated: saturday}),
	}

	stats := ComputeStats(tasks, testNow)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 4, stats.Completed)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, stats.Total, stats.Completed+stats.Pending)
	assert.Equal(t, 1, stats.Overdue, "done tasks past their due date do not count")

	assert.Equal(t, 2, stats.Weekly[time.Saturday])
	assert.Equal(t, 1, stats.Weekly[time.Monday], "completed exactly now is inside the window")
	weeklySum := 0
	for _, n := range stats.Weekly {
		weeklySum += n
	}
	assert.Equal(t, 3, weeklySum, "a completion from seven days ago has aged out")

	assert.Equal(t, map[string]int{
		"work":     2,
		"personal": 4,
	}, stats.ByCategory)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil, testNow)

	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Completed)
	assert.Zero(t, stats.Pending)
	assert.Zero(t, stats.Overdue)
	assert.NotNil(t, stats.ByCategory)
	assert.Empty(t, stats.ByCategory)
}

func TestComputeStats_PendingCountsEveryNonDoneState(t *testing.T) {
	tasks := []*task.Task{
		fixtureTask(t, fixture{status: task.StatusOpen}),
		fixtureTask(t, fixture{status: task.StatusInProgress}),
		fixtureTask(t, fixture{status: task.StatusDone, updated: testNow}),
	}

	stats := ComputeStats(tasks, testNow)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Completed)
}
