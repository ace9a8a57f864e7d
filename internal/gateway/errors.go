package gateway

import (
	"fmt"
	"strings"

	"github.com/veritrail/veritrail/internal/model"
)

// AllGatewaysFailedError is returned in strict mode when every configured
// gateway failed to serve a content identifier. It carries the per-gateway
// attempt log for diagnosis.
type AllGatewaysFailedError struct {
	ContentID string
	Attempts  []model.GatewayAttempt
}

// Error lists every gateway's failure reason.
func (e *AllGatewaysFailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all gateways failed for %s:", e.ContentID)
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, " [%s: %s", a.Gateway, a.Outcome)
		if a.Error != "" {
			fmt.Fprintf(&b, " (%s)", a.Error)
		}
		b.WriteString("]")
	}
	return b.String()
}

// Gateways returns the list of gateways that were attempted.
func (e *AllGatewaysFailedError) Gateways() []string {
	gws := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		gws = append(gws, a.Gateway)
	}
	return gws
}
