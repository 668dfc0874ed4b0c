package entities

// DistributionRef identifies a CDN distribution created for a deployment.
type DistributionRef struct {
	ID         string `json:"id"`
	DomainName string `json:"domainName"`
}

// DistributionInfo is a point-in-time view of a distribution's state.
type DistributionInfo struct {
	ID         string `json:"distributionId"`
	Status     string `json:"status"`
	DomainName string `json:"domainName"`
	Enabled    bool   `json:"enabled"`
}

// CleanupResult aggregates a best-effort teardown: every resource kind is
// attempted independently and both outcomes are reported.
type CleanupResult struct {
	Deleted []string `json:"deleted"`
	Errors  []string `json:"errors"`
}
