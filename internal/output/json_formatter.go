package output

import (
	"encoding/json"

	"github.com/rpgo/allocation-planner/internal/domain"
)

// JSONFormatter serializes the rebalance plan as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(plan *domain.RebalancePlan) ([]byte, error) {
	return json.MarshalIndent(plan, "", "  ")
}
