package server

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/nutrilabel/internal/common"
)

// toStruct encodes v through its JSON form so Struct keys match the JSON envelope.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return s, nil
}

// fromStruct decodes a Struct field into v via JSON.
func fromStruct(in *structpb.Struct, key string, v any) error {
	field, ok := in.GetFields()[key]
	if !ok {
		return common.InvalidArgumentErrorf("%s is required", key)
	}
	b, err := field.MarshalJSON()
	if err != nil {
		return common.InvalidArgumentErrorf("%s: %v", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return common.InvalidArgumentErrorf("%s: %v", key, err)
	}
	return nil
}

func stringField(in *structpb.Struct, key string) string {
	return strings.TrimSpace(in.GetFields()[key].GetStringValue())
}

func boolField(in *structpb.Struct, key string) bool {
	return in.GetFields()[key].GetBoolValue()
}

// numberField returns the value at key, 0 when absent. Strings holding a
// number are accepted.
func numberField(in *structpb.Struct, key string) (float64, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return 0, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if math.IsNaN(k.NumberValue) || math.IsInf(k.NumberValue, 0) {
			return 0, common.InvalidArgumentErrorf("%s must be finite", key)
		}
		return k.NumberValue, nil
	case *structpb.Value_StringValue:
		var f float64
		if _, err := fmt.Sscan(strings.TrimSpace(k.StringValue), &f); err != nil {
			return 0, common.InvalidArgumentErrorf("%s must be a number", key)
		}
		return f, nil
	case *structpb.Value_NullValue:
		return 0, nil
	default:
		return 0, common.InvalidArgumentErrorf("%s must be a number", key)
	}
}
