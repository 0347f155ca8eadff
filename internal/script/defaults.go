package script

import "time"

// DefaultSecurityLimits provides safe default constraints for script execution.
var DefaultSecurityLimits = SecurityLimits{
	MaxExecutionTime: 5 * time.Second,
	MaxAllocs:        1_000_000,
	AllowedPackages: []string{
		"fmt",
		"text",
		"math",
		"rand",
		"times",
		"json",
		"enum",
	},
}

// GetDefaultSecurityLimits returns a copy of the default security limits.
func GetDefaultSecurityLimits() SecurityLimits {
	limits := DefaultSecurityLimits
	limits.AllowedPackages = make([]string, len(DefaultSecurityLimits.AllowedPackages))
	copy(limits.AllowedPackages, DefaultSecurityLimits.AllowedPackages)
	return limits
}
