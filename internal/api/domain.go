package api

import (
	"github.com/JaimeStill/accredit/internal/analytics"
	"github.com/JaimeStill/accredit/internal/submissions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Submissions submissions.System
	Analytics   analytics.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	submissionsSystem := submissions.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Engine,
		runtime.Logger,
		runtime.Pagination,
		runtime.SnapshotPrefix,
	)

	analyticsSystem := analytics.New(
		submissionsSystem,
		runtime.Logger,
	)

	return &Domain{
		Submissions: submissionsSystem,
		Analytics:   analyticsSystem,
	}
}
