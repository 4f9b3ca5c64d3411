package models

// AccountSlot is one trading account as seen by the allocator.
// Occupied is derived from existing bot bindings at scan time; within
// a run it flips to true once the slot has been handed out.
type AccountSlot struct {
	AccountID string `json:"account_id"`
	Exchange  string `json:"exchange"`
	Occupied  bool   `json:"occupied"`
}
