package domain

import (
	"testing"
	"time"
)

// Fixed reference date so bucket boundaries are deterministic.
var refDay = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

func isoDay(t time.Time) string {
	return t.Format("2006-01-02")
}

func TestMatchTaskSearch(t *testing.T) {
	task := Task{Title: "Quarterly Report", Description: "compile the revenue numbers"}

	cases := []struct {
		name string
		term string
		want bool
	}{
		{"empty term passes", "", true},
		{"title substring", "report", true},
		{"title mixed case", "qUaRtErLy", true},
		{"description substring", "REVENUE", true},
		{"no match", "grocery", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MatchTask(task, FilterSpec{Search: tc.term}, refDay)
			if got != tc.want {
				t.Errorf("search %q: got %v, want %v", tc.term, got, tc.want)
			}
		})
	}
}

func TestMatchTaskCategoryCaseInsensitive(t *testing.T) {
	work := Task{Title: "a", Category: CategoryWork}
	personal := Task{Title: "b", Category: CategoryPersonal}
	spec := FilterSpec{Category: "work"}

	if !MatchTask(work, spec, refDay) {
		t.Errorf("WORK task should pass lowercase filter %q", spec.Category)
	}
	if MatchTask(personal, spec, refDay) {
		t.Errorf("PERSONAL task should not pass filter %q", spec.Category)
	}
	if !MatchTask(personal, FilterSpec{}, refDay) {
		t.Error("empty category filter should pass everything")
	}
}

func TestMatchTaskDueBuckets(t *testing.T) {
	cases := []struct {
		name    string
		dueDate string
		bucket  string
		want    bool
	}{
		{"today matches TODAY", isoDay(refDay), "TODAY", true},
		{"yesterday fails TODAY", isoDay(refDay.AddDate(0, 0, -1)), "TODAY", false},
		{"yesterday matches LAST DAY", isoDay(refDay.AddDate(0, 0, -1)), "LAST DAY", true},
		{"today fails LAST DAY", isoDay(refDay), "LAST DAY", false},
		{"two days ago fails LAST DAY", isoDay(refDay.AddDate(0, 0, -2)), "LAST DAY", false},
		{"bucket is case-insensitive", isoDay(refDay.AddDate(0, 0, -1)), "last day", true},
		{"seven days ago matches LAST WEEK", isoDay(refDay.AddDate(0, 0, -7)), "LAST WEEK", true},
		{"today matches LAST WEEK", isoDay(refDay), "LAST WEEK", true},
		{"eight days ago fails LAST WEEK", isoDay(refDay.AddDate(0, 0, -8)), "LAST WEEK", false},
		{"tomorrow fails LAST WEEK", isoDay(refDay.AddDate(0, 0, 1)), "LAST WEEK", false},
		{"one month ago matches LAST MONTH", isoDay(refDay.AddDate(0, -1, 0)), "LAST MONTH", true},
		{"five weeks ago fails LAST MONTH", isoDay(refDay.AddDate(0, 0, -35)), "LAST MONTH", false},
		{"unknown bucket passes", isoDay(refDay.AddDate(0, 0, -90)), "WHENEVER", true},
		{"empty bucket passes", "", "", true},
		{"missing due date fails known bucket", "", "TODAY", false},
		{"full timestamp uses date part", refDay.Format(time.RFC3339), "TODAY", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := Task{Title: "x", DueDate: tc.dueDate}
			got := MatchTask(task, FilterSpec{DueBucket: tc.bucket}, refDay)
			if got != tc.want {
				t.Errorf("due %q bucket %q: got %v, want %v", tc.dueDate, tc.bucket, got, tc.want)
			}
		})
	}
}

func TestMatchTaskAllPredicatesMustPass(t *testing.T) {
	task := Task{
		Title:    "Pay rent",
		Category: CategoryPersonal,
		DueDate:  isoDay(refDay),
	}

	pass := FilterSpec{Search: "rent", Category: "personal", DueBucket: "today"}
	if !MatchTask(task, pass, refDay) {
		t.Fatal("task should pass when all three predicates match")
	}

	fail := pass
	fail.Category = "work"
	if MatchTask(task, fail, refDay) {
		t.Fatal("one failing predicate must reject the task")
	}
}

func TestFilterTasksIdempotent(t *testing.T) {
	tasks := []Task{
		{Title: "alpha", Category: CategoryWork, DueDate: isoDay(refDay)},
		{Title: "beta", Category: CategoryPersonal, DueDate: isoDay(refDay.AddDate(0, 0, -1))},
		{Title: "gamma", Category: CategoryWork, DueDate: isoDay(refDay.AddDate(0, 0, -30))},
	}
	spec := FilterSpec{Category: "WORK", DueBucket: "LAST WEEK"}

	once := FilterTasks(tasks, spec, refDay)
	twice := FilterTasks(once, spec, refDay)

	if len(once) != 1 || once[0].Title != "alpha" {
		t.Fatalf("unexpected first pass: %+v", once)
	}
	if len(twice) != len(once) {
		t.Fatalf("second pass changed the result: %d != %d", len(twice), len(once))
	}
	for i := range once {
		if once[i].Title != twice[i].Title {
			t.Errorf("filter not idempotent at %d: %q != %q", i, once[i].Title, twice[i].Title)
		}
	}
}

func TestFilterTasksPreservesOrder(t *testing.T) {
	tasks := []Task{
		{Title: "one", Description: "keep"},
		{Title: "two", Description: "drop me not"},
		{Title: "three", Description: "keep"},
	}
	got := FilterTasks(tasks, FilterSpec{Search: "keep"}, refDay)
	if len(got) != 2 || got[0].Title != "one" || got[1].Title != "three" {
		t.Fatalf("order not preserved: %+v", got)
	}
}
