package loadcheck

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Report constants.
const (
	PercentageMultiplier = 100
	emailDomain          = "mergington.edu"
	reportFilePermission = 0600
	directoryPermission  = 0750
)
