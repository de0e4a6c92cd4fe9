package orchestrator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

const (
	taskTemplateField = "TaskTemplate"
	forceUpdateField  = "ForceUpdate"
)

var (
	ErrMissingTaskTemplate = errors.New("spec has no TaskTemplate object")
	ErrMissingForceUpdate  = errors.New("TaskTemplate has no ForceUpdate counter")
	ErrInvalidForceUpdate  = errors.New("ForceUpdate is not a non-negative integer")
)

// specAPI keeps numbers as json.Number so large integers elsewhere in the
// spec (memory limits, nano cpus) survive the round trip untouched
var specAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

func decodeSpec(raw []byte) (domain.WorkloadSpec, error) {
	var spec map[string]interface{}
	if err := specAPI.Unmarshal(raw, &spec); err != nil {
		return nil, err
	}
	return domain.WorkloadSpec(spec), nil
}

func encodeSpec(spec domain.WorkloadSpec) ([]byte, error) {
	return specAPI.Marshal(map[string]interface{}(spec))
}

// DeriveRestartSpec returns a deep copy of spec with TaskTemplate.ForceUpdate
// incremented by one, which makes the orchestrator redeploy every task with
// no other change. The input is never modified. Swarm omits a zero counter
// from its responses, createMissing treats an absent counter as zero.
func DeriveRestartSpec(spec domain.WorkloadSpec, createMissing bool) (domain.WorkloadSpec, error) {
	out := spec.DeepCopy()

	template, ok := out[taskTemplateField].(map[string]interface{})
	if !ok {
		return nil, ErrMissingTaskTemplate
	}

	var current uint64
	raw, present := template[forceUpdateField]
	switch {
	case present:
		v, err := counterValue(raw)
		if err != nil {
			return nil, err
		}
		current = v
	case !createMissing:
		return nil, ErrMissingForceUpdate
	}

	if current == math.MaxUint64 {
		return nil, fmt.Errorf("%w: counter would overflow", ErrInvalidForceUpdate)
	}
	template[forceUpdateField] = json.Number(strconv.FormatUint(current+1, 10))
	return out, nil
}

func counterValue(raw interface{}) (uint64, error) {
	switch v := raw.(type) {
	case json.Number:
		n, err := strconv.ParseUint(string(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidForceUpdate, string(v))
		}
		return n, nil
	case float64:
		if v < 0 || v != math.Trunc(v) || v > math.MaxUint64 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidForceUpdate, v)
		}
		return uint64(v), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidForceUpdate, v)
		}
		return uint64(v), nil
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidForceUpdate, v)
		}
		return uint64(v), nil
	case uint64:
		return v, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrInvalidForceUpdate, raw)
	}
}

// ForceUpdateCounter reads the counter from a spec, for logs and tests
func ForceUpdateCounter(spec domain.WorkloadSpec) (uint64, bool) {
	template, ok := spec[taskTemplateField].(map[string]interface{})
	if !ok {
		return 0, false
	}
	raw, ok := template[forceUpdateField]
	if !ok {
		return 0, false
	}
	v, err := counterValue(raw)
	return v, err == nil
}
