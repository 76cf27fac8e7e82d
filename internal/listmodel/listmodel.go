// Package listmodel derives what the dashboard lists display from the
// raw submission sequence plus the current filter criteria. Every
// screen consumes these functions instead of filtering on its own.
package listmodel

import (
	"sort"
	"strings"

	"soin-client/internal/models"
)

// PatientGroup is one patient's slice of the submission set, as shown
// on the doctor and admin dashboards.
type PatientGroup struct {
	PatientID    string
	PatientName  string
	PatientEmail string
	PatientAge   int
	Submissions  []models.Submission
}

// Filter keeps a submission iff the query (case-insensitive) matches
// the patient name or email, and the diabetes type matches unless the
// criteria say "all". Empty query matches everything. Input order is
// preserved; the input slice is never mutated.
func Filter(subs []models.Submission, criteria models.FilterCriteria) []models.Submission {
	if criteria.MatchesAll() {
		return subs
	}

	query := strings.ToLower(criteria.Query)
	out := make([]models.Submission, 0, len(subs))
	for _, sub := range subs {
		if query != "" &&
			!strings.Contains(strings.ToLower(sub.PatientName), query) &&
			!strings.Contains(strings.ToLower(sub.PatientEmail), query) {
			continue
		}
		if criteria.DiabetesType != "" && criteria.DiabetesType != models.DiabetesTypeAll &&
			string(sub.DiabetesType) != criteria.DiabetesType {
			continue
		}
		out = append(out, sub)
	}
	return out
}

// GroupByPatient partitions the submissions by patient id. Groups come
// out in first-seen input order, and so do the submissions inside each
// group. Every submission lands in exactly one group.
func GroupByPatient(subs []models.Submission) []PatientGroup {
	index := make(map[string]int, len(subs))
	groups := make([]PatientGroup, 0)
	for _, sub := range subs {
		i, ok := index[sub.PatientID]
		if !ok {
			i = len(groups)
			index[sub.PatientID] = i
			groups = append(groups, PatientGroup{
				PatientID:    sub.PatientID,
				PatientName:  sub.PatientName,
				PatientEmail: sub.PatientEmail,
				PatientAge:   sub.PatientAge,
			})
		}
		groups[i].Submissions = append(groups[i].Submissions, sub)
	}
	return groups
}

// SortNewestFirst returns a copy ordered by created_at descending.
// Applied per group before display; not part of grouping itself.
func SortNewestFirst(subs []models.Submission) []models.Submission {
	out := make([]models.Submission, len(subs))
	copy(out, subs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
