package form

import "time"

// FormStats is a point-in-time rollup over one owner's forms
type FormStats struct {
	TotalForms       int   `json:"total_forms"`
	ActiveForms      int   `json:"active_forms"`
	TotalSubmissions int64 `json:"total_submissions"`
	PublicForms      int   `json:"public_forms"`
}

// ComputeStats aggregates forms as of now. A form whose expiry has passed is
// not active even when its active flag is still set.
func ComputeStats(forms []ApplicationForm, now time.Time) FormStats {
	stats := FormStats{TotalForms: len(forms)}
	for i := range forms {
		f := &forms[i]
		if f.IsCurrentlyActive(now) {
			stats.ActiveForms++
		}
		if f.IsPublic {
			stats.PublicForms++
		}
		stats.TotalSubmissions += f.SubmissionCount
	}
	return stats
}
