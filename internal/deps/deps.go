package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/samber/lo"
)

// Requirement names an external program the generator shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement after lookup. Command holds the resolved path when
// the binary was found.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// CheckBinaries resolves every requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	return lo.Map(requirements, func(req Requirement, _ int) Status {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		status := Status{Requirement: req}
		if req.Command == "" {
			status.Detail = "command not configured"
			return status
		}
		resolved, err := exec.LookPath(req.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
			return status
		}
		status.Command = resolved
		status.Available = true
		return status
	})
}

// Missing returns the unavailable statuses that are not optional.
func Missing(statuses []Status) []Status {
	return lo.Filter(statuses, func(s Status, _ int) bool {
		return !s.Available && !s.Optional
	})
}
