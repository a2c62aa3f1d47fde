package model

type ReconciliationSummary struct {
	Checked      int `json:"checked"`
	Completed    int `json:"completed"`
	Failed       int `json:"failed"`
	StillPending int `json:"stillPending"`
	Errors       int `json:"errors"`
}
