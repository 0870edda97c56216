package dto

import "time"

type PluginInfo struct {
	Name         string
	Version      string
	Enabled      bool
	Binary       string
	Capabilities []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type DispatchInput struct {
	PluginName string
	// DryRun builds the reminders without starting the plugin.
	DryRun bool
}

type ReminderOutput struct {
	LoanID      string
	BookTitle   string
	MemberName  string
	MemberEmail string
	DueAt       time.Time
	DaysOverdue int
}

type FailureOutput struct {
	LoanID string
	Reason string
}

type DispatchOutput struct {
	PluginName string
	DryRun     bool
	Reminders  []ReminderOutput
	Delivered  int
	Failures   []FailureOutput
}
