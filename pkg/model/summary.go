package model

// Summary counts what a pipeline stage did.
type Summary struct {
	Stage     string `json:"stage"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
	Removed   int    `json:"removed"`
	Undecided int    `json:"undecided"`
	Allowed   int    `json:"allowed"`
	Denied    int    `json:"denied"`
	Sanitized int    `json:"sanitized"`
}

// Add folds o into s.
func (s *Summary) Add(o Summary) {
	s.Created += o.Created
	s.Updated += o.Updated
	s.Skipped += o.Skipped
	s.Removed += o.Removed
	s.Undecided += o.Undecided
	s.Allowed += o.Allowed
	s.Denied += o.Denied
	s.Sanitized += o.Sanitized
}
