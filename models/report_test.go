package models

import "testing"

func TestValidReportStatus(t *testing.T) {
	valid := []ReportStatus{
		ReportStatusPending,
		ReportStatusProcessing,
		ReportStatusResolved,
		ReportStatusDismissed,
	}
	for _, s := range valid {
		if !ValidReportStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []ReportStatus{"", "open", "PENDING", "done"}
	for _, s := range invalid {
		if ValidReportStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
