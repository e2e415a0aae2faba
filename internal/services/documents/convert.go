package documents

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/docextract/internal/core/document"
)

// ResultStruct renders res in its JSON shape as a protobuf Struct for RPC
// hosts.
func ResultStruct(res document.Result) (*structpb.Struct, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return structpb.NewStruct(m)
}
