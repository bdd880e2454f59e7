package graph

import (
	"encoding/json"
	"fmt"

	absser "github.com/microsoft/kiota-abstractions-go/serialization"
	jsonser "github.com/microsoft/kiota-serialization-json-go"
)

// ToRawJSON converts a Graph model into a plain JSON map. Values that are
// not Graph models go through encoding/json.
func ToRawJSON(result interface{}) (map[string]interface{}, error) {
	var jsonBytes []byte

	if parsable, ok := result.(absser.Parsable); ok {
		writer := jsonser.NewJsonSerializationWriter()
		defer writer.Close()

		if err := writer.WriteObjectValue("", parsable); err != nil {
			return nil, fmt.Errorf("failed to serialize with Kiota: %w", err)
		}

		content, err := writer.GetSerializedContent()
		if err != nil {
			return nil, fmt.Errorf("failed to get serialized content: %w", err)
		}
		jsonBytes = content
	} else {
		content, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result to JSON: %w", err)
		}
		jsonBytes = content
	}

	var rawMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return rawMap, nil
}
