package models

// PropertyRef identifies a property in data-quality reports.
type PropertyRef struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Type  PropertyType `json:"type"`
}

// MissingDataReport lists properties whose detail or schedule rows are absent
// and are therefore served with synthesized defaults.
type MissingDataReport struct {
	MissingDetails         []PropertyRef `json:"missing_details"`
	MissingPaymentSchedule []PropertyRef `json:"missing_payment_schedule"`
}

func (r MissingDataReport) IsClean() bool {
	return len(r.MissingDetails) == 0 && len(r.MissingPaymentSchedule) == 0
}

// CheckMissing inspects raw rows for absent relations.
func CheckMissing(raws []RawProperty) MissingDataReport {
	report := MissingDataReport{
		MissingDetails:         []PropertyRef{},
		MissingPaymentSchedule: []PropertyRef{},
	}
	for _, raw := range raws {
		ref := PropertyRef{ID: raw.ID, Title: raw.Title, Type: PropertyType(raw.Type)}
		if raw.Details.Len() == 0 {
			report.MissingDetails = append(report.MissingDetails, ref)
		}
		if raw.PaymentSchedules.Len() == 0 {
			report.MissingPaymentSchedule = append(report.MissingPaymentSchedule, ref)
		}
	}
	return report
}
