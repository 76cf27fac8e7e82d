package listmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"soin-client/internal/models"
)

func sampleSubmissions() []models.Submission {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return []models.Submission{
		{
			ID: "s1", PatientID: "p1", PatientName: "Ann Lee", PatientEmail: "ann@example.com",
			PatientAge: 34, DiabetesType: models.DiabetesType1, CreatedAt: base,
		},
		{
			ID: "s2", PatientID: "p2", PatientName: "Bob", PatientEmail: "bob@example.com",
			PatientAge: 51, DiabetesType: models.DiabetesType2, CreatedAt: base.Add(time.Hour),
		},
		{
			ID: "s3", PatientID: "p1", PatientName: "Ann Lee", PatientEmail: "ann@example.com",
			PatientAge: 34, DiabetesType: models.DiabetesPrediabetes, CreatedAt: base.Add(2 * time.Hour),
		},
		{
			ID: "s4", PatientID: "p3", PatientName: "Carla", PatientEmail: "carla@example.com",
			PatientAge: 45, DiabetesType: models.DiabetesType1, CreatedAt: base.Add(3 * time.Hour),
		},
	}
}

func TestFilterIdentityElement(t *testing.T) {
	subs := sampleSubmissions()
	out := Filter(subs, models.FilterCriteria{Query: "", DiabetesType: models.DiabetesTypeAll})
	assert.Equal(t, subs, out)
}

func TestFilterIdempotent(t *testing.T) {
	subs := sampleSubmissions()
	criteria := models.FilterCriteria{Query: "ann", DiabetesType: models.DiabetesTypeAll}
	once := Filter(subs, criteria)
	twice := Filter(once, criteria)
	assert.Equal(t, once, twice)
}

func TestFilterByNameCaseInsensitive(t *testing.T) {
	subs := sampleSubmissions()
	out := Filter(subs, models.FilterCriteria{Query: "ANN", DiabetesType: models.DiabetesTypeAll})
	assert.Len(t, out, 2)
	for _, sub := range out {
		assert.Equal(t, "Ann Lee", sub.PatientName)
	}
}

func TestFilterByEmail(t *testing.T) {
	subs := sampleSubmissions()
	out := Filter(subs, models.FilterCriteria{Query: "bob@example", DiabetesType: models.DiabetesTypeAll})
	assert.Len(t, out, 1)
	assert.Equal(t, "s2", out[0].ID)
}

func TestFilterByDiabetesType(t *testing.T) {
	subs := sampleSubmissions()
	out := Filter(subs, models.FilterCriteria{DiabetesType: "Type 1"})
	assert.Len(t, out, 2)
	assert.Equal(t, "s1", out[0].ID)
	assert.Equal(t, "s4", out[1].ID)
}

func TestFilterCombined(t *testing.T) {
	// Query "ann" with type "all" keeps exactly the Ann Lee record.
	subs := []models.Submission{
		{ID: "a", PatientID: "p1", PatientName: "Ann Lee", PatientEmail: "ann@x.com", DiabetesType: models.DiabetesType1},
		{ID: "b", PatientID: "p2", PatientName: "Bob", PatientEmail: "bob@x.com", DiabetesType: models.DiabetesType2},
	}
	out := Filter(subs, models.FilterCriteria{Query: "ann", DiabetesType: models.DiabetesTypeAll})
	assert.Len(t, out, 1)
	assert.Equal(t, "Ann Lee", out[0].PatientName)
}

func TestFilterPreservesInputOrder(t *testing.T) {
	subs := sampleSubmissions()
	out := Filter(subs, models.FilterCriteria{DiabetesType: "Type 1"})
	assert.True(t, out[0].CreatedAt.Before(out[1].CreatedAt))
}

func TestFilterNoMatch(t *testing.T) {
	subs := sampleSubmissions()
	out := Filter(subs, models.FilterCriteria{Query: "nobody"})
	assert.Empty(t, out)
}

func TestGroupByPatientPartitions(t *testing.T) {
	subs := sampleSubmissions()
	groups := GroupByPatient(subs)

	seen := map[string]int{}
	total := 0
	for _, group := range groups {
		for _, sub := range group.Submissions {
			assert.Equal(t, group.PatientID, sub.PatientID)
			seen[sub.ID]++
			total++
		}
	}
	assert.Equal(t, len(subs), total)
	for _, sub := range subs {
		assert.Equal(t, 1, seen[sub.ID], "submission %s must appear exactly once", sub.ID)
	}
}

func TestGroupByPatientFirstSeenOrder(t *testing.T) {
	groups := GroupByPatient(sampleSubmissions())
	assert.Len(t, groups, 3)
	assert.Equal(t, "p1", groups[0].PatientID)
	assert.Equal(t, "p2", groups[1].PatientID)
	assert.Equal(t, "p3", groups[2].PatientID)

	// Within a group, input order holds until SortNewestFirst is applied.
	assert.Equal(t, []string{"s1", "s3"}, []string{groups[0].Submissions[0].ID, groups[0].Submissions[1].ID})
	assert.Equal(t, "Ann Lee", groups[0].PatientName)
	assert.Equal(t, 34, groups[0].PatientAge)
}

func TestGroupByPatientEmpty(t *testing.T) {
	assert.Empty(t, GroupByPatient(nil))
}

func TestSortNewestFirst(t *testing.T) {
	subs := sampleSubmissions()
	sorted := SortNewestFirst(subs)

	for i := 1; i < len(sorted); i++ {
		assert.False(t, sorted[i-1].CreatedAt.Before(sorted[i].CreatedAt))
	}
	// Input untouched.
	assert.Equal(t, "s1", subs[0].ID)
	assert.Equal(t, "s4", sorted[0].ID)
}
