package output

import (
	"bytes"

	"github.com/rpgo/allocation-planner/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackFormatter serializes the plan as MessagePack, keyed by the JSON field names.
type MsgpackFormatter struct{}

func (m MsgpackFormatter) Name() string { return "msgpack" }

func (m MsgpackFormatter) Format(plan *domain.RebalancePlan) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.SetSortMapKeys(true)
	if err := enc.Encode(plan); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
